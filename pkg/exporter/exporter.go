package exporter

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/l2ldev/checklist-export/pkg/l2l"
)

// Header is the fixed column order of the output file. One row is emitted
// per checklist answer; the first 25 columns are shared by every answer of
// the same checklist. The checklist_udpated_by spelling is part of the
// established file contract consumed downstream.
var Header = []string{
	"checklist_id",
	"document_id",
	"document_name",
	"checklist_number",
	"checklist_created",
	"checklist_updated",
	"checklist_udpated_by",
	"checklist_closed",
	"checklist_closed_date",
	"dispatch_number",
	"area_id",
	"area_code",
	"area_description",
	"line_id",
	"line_code",
	"line_description",
	"machine_id",
	"machine_code",
	"machine_description",
	"technology_id",
	"product_id",
	"product_code",
	"product_description",
	"product_order_id",
	"build_sequence_id",
	"question",
	"answer_na",
	"answer",
	"answer_created",
	"answer_by",
	"control_limit_low",
	"control_limit_high",
	"reject_limit_low",
	"reject_limit_high",
}

// Logger receives diagnostic messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Options configures an export run.
type Options struct {
	Client *l2l.Client

	// Site scopes the export and the reference lookups.
	Site int
	// Start and End are the inclusive closed-date bounds.
	Start time.Time
	End   time.Time

	// PageSize is the checklist fetch page size; 0 means 500.
	PageSize int

	Logger Logger
	// Progress, if set, is invoked once per fetched page.
	Progress func()
}

// Stats summarizes a completed export run.
type Stats struct {
	Checklists int
	Skipped    int
	Rows       int
	Elapsed    time.Duration
}

// Export pages through the checklists matching the options, flattens each
// into one row per answer, and streams the rows to sink. The header row is
// written first. Rows are written as they are produced; the result set is
// never held in memory.
func Export(sink RowSink, opts Options) (Stats, error) {
	var stats Stats
	start := time.Now()

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = l2l.DefaultPageSize
	}

	if err := sink.Write(Header); err != nil {
		return stats, fmt.Errorf("write header: %w", err)
	}

	filters := l2l.Params{
		"site":            strconv.Itoa(opts.Site),
		"closeddate__gte": l2l.DateString(opts.Start),
		"closeddate__lte": l2l.DateString(opts.End),
	}

	offset := 0
	for {
		params := make(l2l.Params, len(filters)+1)
		for k, v := range filters {
			params[k] = v
		}
		params["offset"] = strconv.Itoa(offset)

		page, err := l2l.GetPage[l2l.Checklist](opts.Client, "checklists", params, pageSize)
		if err != nil {
			return stats, err
		}
		if opts.Progress != nil {
			opts.Progress()
		}

		for i := range page {
			rows, err := exportChecklist(sink, opts, &page[i])
			if err != nil {
				return stats, err
			}
			stats.Checklists++
			if rows < 0 {
				stats.Skipped++
			} else {
				stats.Rows += rows
			}
		}

		if len(page) < pageSize {
			break
		}
		offset += len(page)
	}

	stats.Elapsed = time.Since(start)
	return stats, nil
}

// exportChecklist flattens one checklist into rows. It returns -1 when the
// checklist was skipped because its tasks arrived unparsed.
func exportChecklist(sink RowSink, opts Options, cl *l2l.Checklist) (int, error) {
	tasks, err := cl.TaskList()
	if err != nil {
		if !errors.Is(err, l2l.ErrUnparsedTasks) {
			return 0, err
		}
		infof(opts.Logger, "tasks is not an object. skipping checklist %d. %v", cl.ID, err)
		return -1, nil
	}

	area, err := resolveReference(opts, "areas", cl.Area)
	if err != nil {
		return 0, err
	}
	line, err := resolveReference(opts, "lines", cl.Line)
	if err != nil {
		return 0, err
	}
	machine, err := resolveReference(opts, "machines", cl.Machine)
	if err != nil {
		return 0, err
	}
	product, err := resolveReference(opts, "productcomponents", cl.Product)
	if err != nil {
		return 0, err
	}

	document := documentFields(cl, area, line, machine, product)

	rows := 0
	for i := range cl.Answers {
		ans := &cl.Answers[i]
		question, ok := questionText(tasks, ans)
		if !ok {
			warnf(opts.Logger, "checklist %d: answer references task %d (row %s, column %s) outside the task list. skipping the answer.",
				cl.ID, ans.TaskNumber, flexIntString(ans.TableRowNumber), flexIntString(ans.TableColumnNumber))
			continue
		}

		row := make([]string, 0, len(Header))
		row = append(row, document...)
		row = append(row,
			question,
			strconv.FormatBool(ans.NA),
			string(ans.Answer),
			ans.Created,
			ans.LastUpdatedBy,
			limitString(ans.ControlLimitLow),
			limitString(ans.ControlLimitHigh),
			limitString(ans.RejectLimitLow),
			limitString(ans.RejectLimitHigh),
		)
		if err := sink.Write(row); err != nil {
			return rows, fmt.Errorf("write row: %w", err)
		}
		rows++
	}
	return rows, nil
}

// resolveReference looks up a reference entity by id, scoped to the export
// site, through the client's point-lookup cache. An absent id or an empty
// lookup result yields the empty fallback.
func resolveReference(opts Options, path string, id *int64) (l2l.Reference, error) {
	if id == nil || *id == 0 {
		return l2l.Reference{}, nil
	}
	ref, ok, err := l2l.GetCached[l2l.Reference](opts.Client, path, l2l.Params{
		"site": strconv.Itoa(opts.Site),
		"id":   strconv.FormatInt(*id, 10),
	})
	if err != nil {
		return l2l.Reference{}, err
	}
	if !ok {
		return l2l.Reference{}, nil
	}
	return ref, nil
}

// questionText resolves the question an answer responded to. Wire indices
// are 1-based; they are converted here, at the navigation boundary. ok is
// false when any index falls outside the task structure.
func questionText(tasks []l2l.Task, ans *l2l.Answer) (string, bool) {
	ti := int(ans.TaskNumber) - 1
	if ti < 0 || ti >= len(tasks) {
		return "", false
	}
	task := tasks[ti]

	if ans.TableRowNumber != nil && ans.TableColumnNumber != nil {
		if task.Table == nil {
			return "", false
		}
		ri := int(*ans.TableRowNumber) - 1
		if ri < 0 || ri >= len(task.Table.Rows) {
			return "", false
		}
		ci := int(*ans.TableColumnNumber) - 1
		row := task.Table.Rows[ri]
		if ci < 0 || ci >= len(row.Columns) {
			return "", false
		}
		return row.Columns[ci].Text, true
	}

	return task.Text, true
}

// documentFields builds the 25 shared columns of a checklist's rows.
func documentFields(cl *l2l.Checklist, area, line, machine, product l2l.Reference) []string {
	return []string{
		strconv.FormatInt(cl.ID, 10),
		idString(cl.Document),
		cl.Name,
		string(cl.Number),
		cl.Created,
		cl.LastUpdated,
		cl.LastUpdatedBy,
		strconv.FormatBool(cl.Closed),
		cl.ClosedDate,
		string(cl.Dispatch),
		idString(cl.Area),
		area.Code,
		area.Description,
		idString(cl.Line),
		line.Code,
		line.Description,
		idString(cl.Machine),
		machine.Code,
		machine.Description,
		idString(cl.Technology),
		idString(cl.Product),
		product.Code,
		product.Description,
		idString(cl.ProductOrder),
		idString(cl.BuildSequence),
	}
}

func idString(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func limitString(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func flexIntString(n *l2l.FlexInt) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(int(*n))
}

func infof(l Logger, format string, args ...any) {
	if l != nil {
		l.Infof(format, args...)
	}
}

func warnf(l Logger, format string, args ...any) {
	if l != nil {
		l.Warnf(format, args...)
	}
}
