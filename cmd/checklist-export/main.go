package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	checklistexport "github.com/l2ldev/checklist-export"
	"github.com/l2ldev/checklist-export/pkg/config"
	"github.com/l2ldev/checklist-export/pkg/l2l"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const version = l2l.Version

// filenameStamp formats timestamps used in log/csv file names.
const filenameStamp = "2006-01-02 15-04-05"

var (
	configDir    string
	outputFormat string
	verbose      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "checklist-export",
		Short: "Export checklist answers to a spreadsheet",
		Long:  "A tool to export checklist answers from an L2L CloudDISPATCH server, one row per answer, for a single site over a date range",
		Run:   run,
	}

	rootCmd.Flags().StringVarP(&configDir, "config", "c", ".", "Directory containing config.json (its parent is searched too)")
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Output format: csv or xlsx (overrides the config file)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Echo every log entry to the terminal")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("checklist-export version %s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)

	cyan.Println("\n📋 Checklist Answers Export")
	cyan.Println("===========================")
	cyan.Println()

	cfg, err := config.Load(configDir)
	if err != nil {
		red.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		cfg.Verbose = true
	}

	format := checklistexport.FormatCSV
	if cfg.ExportFormat != "" {
		format = checklistexport.Format(cfg.ExportFormat)
	}
	if outputFormat != "" {
		format = checklistexport.Format(outputFormat)
	}
	ext := "csv"
	if format == checklistexport.FormatXLSX {
		ext = "xlsx"
	}

	logDir, err := ensureDir(cfg.LogDirectory, "log")
	if err != nil {
		red.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	outDir, err := ensureDir(cfg.CSVDirectory, "csv")
	if err != nil {
		red.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	stamp := time.Now().Format(filenameStamp)
	logPath := filepath.Join(logDir, "log-"+stamp+".log")
	outPath := filepath.Join(outDir, "checklist-"+stamp+"."+ext)

	logger, err := newRunLogger(logPath, cfg.Verbose)
	if err != nil {
		red.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Printf("log file: %s", logPath)
	logger.Printf("output file: %s", outPath)

	client := l2l.NewClient(cfg.APIURL, cfg.APIKey, logger)

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	site, err := chooseSite(line, client, logger)
	if err != nil {
		line.Close()
		red.Printf("\nError: %v\n", err)
		os.Exit(1)
	}

	start, end, err := chooseDateRange(line, logger)
	if err != nil {
		line.Close()
		red.Printf("\nError: %v\n", err)
		os.Exit(1)
	}

	logger.Printf("Gathering checklist answers")

	result, err := checklistexport.Run(checklistexport.Options{
		Client:     client,
		Site:       site.Site,
		Start:      start,
		End:        end,
		OutputPath: outPath,
		Format:     format,
		Logger:     logger,
		Progress:   func() { fmt.Print(".") },
	})
	fmt.Println()
	if err != nil {
		red.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	stats := result.Stats
	cyan.Println("\n📊 Export Summary:")
	fmt.Printf("  • Checklists: %d\n", stats.Checklists)
	if stats.Skipped > 0 {
		fmt.Printf("  • Skipped (unparsed tasks): %d\n", stats.Skipped)
	}
	fmt.Printf("  • Rows: %d\n", stats.Rows)

	logger.Printf("Completed in %s", stats.Elapsed.Round(time.Second))
	green.Printf("\n✨ Successfully exported checklist answers to %s\n\n", result.OutputPath)
}

// chooseSite lists the server's sites and prompts until a listed site id
// is entered.
func chooseSite(line *liner.State, client *l2l.Client, logger *runLogger) (l2l.Site, error) {
	sites, err := checklistexport.FetchSites(client)
	if err != nil {
		return l2l.Site{}, err
	}
	if len(sites) == 0 {
		return l2l.Site{}, errors.New("the server returned no sites")
	}

	fmt.Println("SITES:")
	for _, s := range sites {
		fmt.Printf("%d: %s\n", s.Site, s.Description)
	}

	for {
		input, err := line.Prompt("Please enter a site number from above: ")
		if err != nil {
			return l2l.Site{}, promptError(err)
		}
		site, ok := checklistexport.FindSite(sites, input)
		if !ok {
			logger.Errorf("ERROR: Not a valid site id. Please try again.")
			continue
		}
		logger.Printf("Site selected: %d: %s", site.Site, site.Description)
		return site, nil
	}
}

// chooseDateRange prompts for two dates until a valid range under one
// month is entered. Entry order does not matter.
func chooseDateRange(line *liner.State, logger *runLogger) (time.Time, time.Time, error) {
	for {
		first, err := line.Prompt("Please enter the start date: ")
		if err != nil {
			return time.Time{}, time.Time{}, promptError(err)
		}
		second, err := line.Prompt("Please enter the end date: ")
		if err != nil {
			return time.Time{}, time.Time{}, promptError(err)
		}

		start, end, err := checklistexport.ResolveDateRange(first, second)
		if err != nil {
			logger.Errorf("ERROR: %v. Please try again.", err)
			continue
		}
		logger.Printf("Start date: %s, End date: %s", l2l.DateString(start), l2l.DateString(end))
		return start, end, nil
	}
}

func promptError(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return errors.New("aborted")
	}
	return err
}

// ensureDir resolves a configured directory, falling back to fallback
// beside the working directory, creating it when missing.
func ensureDir(configured, fallback string) (string, error) {
	dir := configured
	if dir == "" {
		dir = fallback
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s directory: %w", fallback, err)
	}
	return dir, nil
}

// runLogger appends newline-delimited entries to the run's log file.
// Errorf entries are always echoed to the terminal; Infof entries only in
// verbose mode. Printf is for announcements that are logged and always
// shown without any warning prefix.
type runLogger struct {
	file    *os.File
	verbose bool
}

func newRunLogger(path string, verbose bool) (*runLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &runLogger{file: f, verbose: verbose}, nil
}

func (l *runLogger) Infof(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.append(msg)
	if l.verbose {
		fmt.Println(msg)
	}
}

func (l *runLogger) Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.append(msg)
	color.New(color.FgYellow).Println("⚠ " + msg)
}

func (l *runLogger) Errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.append(msg)
	color.New(color.FgRed).Println(msg)
}

func (l *runLogger) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.append(msg)
	fmt.Println(msg)
}

func (l *runLogger) append(msg string) {
	if l.file != nil {
		fmt.Fprintln(l.file, msg)
	}
}

func (l *runLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
