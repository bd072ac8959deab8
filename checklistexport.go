package checklistexport

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/l2ldev/checklist-export/pkg/exporter"
	"github.com/l2ldev/checklist-export/pkg/l2l"
)

// Format selects the output sink.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// MaxRange is the longest selectable date range. Ranges of a full month or
// more are rejected to keep the server-side queries bounded.
const MaxRange = 31 * 24 * time.Hour

// Options configures an export run.
type Options struct {
	// BaseURL and APIKey identify the API server. Ignored when Client is
	// set.
	BaseURL string
	APIKey  string
	// Client, when non-nil, is used instead of constructing one. Pass the
	// client used for site selection so its lookup cache is shared.
	Client *l2l.Client

	// Site is the selected site id; Start and End the inclusive
	// closed-date range.
	Site  int
	Start time.Time
	End   time.Time

	// OutputPath receives the export. Format defaults to CSV.
	OutputPath string
	Format     Format

	// PageSize overrides the checklist page size (default 500).
	PageSize int

	Logger Logger
	// Progress, if set, is invoked once per fetched page of checklists.
	Progress func()
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Result contains the export output.
type Result struct {
	OutputPath string
	Stats      exporter.Stats
}

// Run executes the export pipeline: pages through the checklists closed in
// [Start, End] at the selected site, flattens each into one row per
// answer, and streams the rows to the output file.
func Run(opts Options) (*Result, error) {
	client := opts.Client
	if client == nil {
		client = l2l.NewClient(opts.BaseURL, opts.APIKey, opts.Logger)
	}

	var (
		sink exporter.RowSink
		err  error
	)
	switch opts.Format {
	case "", FormatCSV:
		sink, err = exporter.NewCSVSink(opts.OutputPath)
	case FormatXLSX:
		sink, err = exporter.NewXLSXSink(opts.OutputPath)
	default:
		return nil, fmt.Errorf("unknown output format %q", opts.Format)
	}
	if err != nil {
		return nil, err
	}

	stats, err := exporter.Export(sink, exporter.Options{
		Client:   client,
		Site:     opts.Site,
		Start:    opts.Start,
		End:      opts.End,
		PageSize: opts.PageSize,
		Logger:   opts.Logger,
		Progress: opts.Progress,
	})
	if err != nil {
		sink.Close()
		return nil, err
	}
	if err := sink.Close(); err != nil {
		return nil, err
	}

	return &Result{OutputPath: opts.OutputPath, Stats: stats}, nil
}

// FetchSites retrieves the full site list, ordered by site code, in a
// single page capped at 1000.
func FetchSites(client *l2l.Client) ([]l2l.Site, error) {
	return l2l.GetPage[l2l.Site](client, "sites", l2l.Params{"order_by": "site"}, 1000)
}

// FindSite matches a user-entered site id against the fetched site list.
// ok is false for non-numeric input and for ids not present in the list.
func FindSite(sites []l2l.Site, input string) (l2l.Site, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return l2l.Site{}, false
	}
	for _, s := range sites {
		if s.Site == id {
			return s, true
		}
	}
	return l2l.Site{}, false
}

// ResolveDateRange parses two date strings and orders them: whichever
// parses earlier becomes the range start. Ranges spanning MaxRange or more
// are rejected.
func ResolveDateRange(first, second string) (start, end time.Time, err error) {
	a, err := l2l.ParseDateTime(first)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	b, err := l2l.ParseDateTime(second)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if b.Before(a) {
		a, b = b, a
	}
	if b.Sub(a) >= MaxRange {
		return time.Time{}, time.Time{}, fmt.Errorf("you can only select one month at a time")
	}
	return a, b, nil
}
