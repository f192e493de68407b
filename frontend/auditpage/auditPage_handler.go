package auditpage

import (
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"

	sharedhtml "setuptrack/frontend/shared/html"
	"setuptrack/setuplog"
)

// AuditPageQueryHandler renders the audit listing with the active filters
// applied.
func AuditPageQueryHandler(setups *setuplog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := FiltersFromQuery(r.URL.Query())
		cells := filters.Apply(setups.ListAllSetups())

		cellNames := make([]string, 0, len(cells))
		total, audited := 0, 0
		for name, records := range cells {
			cellNames = append(cellNames, name)
			total += len(records)
			for _, rec := range records {
				if rec.Audited.Bool() {
					audited++
				}
			}
		}
		sort.Strings(cellNames)

		var b strings.Builder
		fmt.Fprintf(&b, `<main class="audit"><h1>Setup Audit</h1>
<p class="counters">%d setups, %d audited</p>
<form method="get" action="/app/audit" class="filters">
<input type="date" name="filter_date_start" value="%s">
<input type="date" name="filter_date_end" value="%s">
<input type="text" name="filter_cell" placeholder="Cell" value="%s">
<input type="text" name="filter_order" placeholder="Order" value="%s">
<input type="text" name="filter_supplier" placeholder="Supplier" value="%s">
<input type="text" name="filter_auditor" placeholder="Auditor" value="%s">
<select name="filter_audited">
<option value="">All</option>
<option value="yes"%s>Audited</option>
<option value="no"%s>Pending</option>
</select>
<button type="submit">Filter</button>
</form>`,
			total, audited,
			html.EscapeString(filters.DateStart), html.EscapeString(filters.DateEnd),
			html.EscapeString(filters.Cell), html.EscapeString(filters.Order),
			html.EscapeString(filters.Supplier), html.EscapeString(filters.Auditor),
			selectedIf(filters.Audited == "yes"), selectedIf(filters.Audited == "no"))

		for _, cellName := range cellNames {
			fmt.Fprintf(&b, `<section class="cell"><h2>%s</h2><table><thead><tr><th>Order</th><th>Type</th><th>Supplier</th><th>Timestamp</th><th>Audited</th><th>Auditor</th></tr></thead><tbody>`,
				html.EscapeString(cellName))
			for _, rec := range cells[cellName] {
				auditedCell := "no"
				if rec.Audited.Bool() {
					auditedCell = "yes"
				}
				fmt.Fprintf(&b, `<tr data-identifier="%s"><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
					html.EscapeString(rec.FileIdentifier),
					html.EscapeString(rec.OrderNumber), html.EscapeString(rec.SetupType),
					html.EscapeString(rec.SupplierName), html.EscapeString(rec.Timestamp),
					auditedCell, html.EscapeString(rec.AuditorName))
			}
			b.WriteString(`</tbody></table></section>`)
		}
		b.WriteString(`<script src="/assets/audit.js"></script></main>`)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(sharedhtml.RenderLayout("Setup Audit", b.String())))
	}
}

func selectedIf(cond bool) string {
	if cond {
		return " selected"
	}
	return ""
}
