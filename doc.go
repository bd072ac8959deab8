// Package checklistexport exports checklist answers from an L2L
// CloudDISPATCH server to a delimited spreadsheet, one row per answer.
// Checklists are fetched for a single site over a closed-date range,
// each checklist's nested task/answer structure is flattened, and the
// referenced areas, lines, machines and products are resolved through a
// cached point lookup.
//
// The CLI lives in cmd/checklist-export; this root package exposes the
// same pipeline as a Go API so that callers can embed the export in their
// own tools without shelling out.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named checklistexport:
//
//	import "github.com/l2ldev/checklist-export" // package checklistexport
//
// # Quick start
//
//	result, err := checklistexport.Run(checklistexport.Options{
//	    BaseURL:    "https://customer.leading2lean.com/api/1.0/",
//	    APIKey:     os.Getenv("L2L_API_KEY"),
//	    Site:       7,
//	    Start:      start,
//	    End:        end,
//	    OutputPath: "answers.csv",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Stats.Rows, "rows written")
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// and diagnostic messages. A nil Logger silences all output.
//
// # Rate limiting
//
// Rate-limited (429) requests are retried indefinitely, sleeping for the
// server-provided Retry-After duration (5 seconds when absent). A
// sufficiently persistent throttle therefore blocks the run; this matches
// the server operators' guidance for bulk exports.
package checklistexport
