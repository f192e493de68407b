package auditpage

import (
	"net/url"
	"strings"

	"setuptrack/models"
)

// Filters narrows the audit listing. Text filters are case-insensitive
// substring matches; date bounds compare the YYYY-MM-DD prefix of the record
// timestamp. Audited is "yes", "no" or empty for both.
type Filters struct {
	DateStart string
	DateEnd   string
	Auditor   string
	Audited   string
	Order     string
	Cell      string
	Supplier  string
}

// FiltersFromQuery extracts the filter set from the audit page query string.
func FiltersFromQuery(q url.Values) Filters {
	return Filters{
		DateStart: q.Get("filter_date_start"),
		DateEnd:   q.Get("filter_date_end"),
		Auditor:   q.Get("filter_auditor"),
		Audited:   q.Get("filter_audited"),
		Order:     q.Get("filter_order"),
		Cell:      q.Get("filter_cell"),
		Supplier:  q.Get("filter_supplier"),
	}
}

// Empty reports whether no filter is set.
func (f Filters) Empty() bool {
	return f == Filters{}
}

// Apply keeps only cells with at least one matching setup.
func (f Filters) Apply(cells map[string][]models.SetupRecord) map[string][]models.SetupRecord {
	if f.Empty() {
		return cells
	}

	filtered := make(map[string][]models.SetupRecord)
	for cellName, setups := range cells {
		if f.Cell != "" && !containsFold(cellName, f.Cell) {
			continue
		}
		var kept []models.SetupRecord
		for _, setup := range setups {
			if f.matches(setup) {
				kept = append(kept, setup)
			}
		}
		if len(kept) > 0 {
			filtered[cellName] = kept
		}
	}
	return filtered
}

func (f Filters) matches(setup models.SetupRecord) bool {
	// Record timestamps encode the date first, so the prefix compares as a
	// plain string.
	setupDate := setup.Timestamp
	if i := strings.IndexAny(setupDate, " _"); i >= 0 {
		setupDate = setupDate[:i]
	}
	if f.DateStart != "" && setupDate < f.DateStart {
		return false
	}
	if f.DateEnd != "" && setupDate > f.DateEnd {
		return false
	}
	if f.Auditor != "" && !containsFold(setup.AuditorName, f.Auditor) {
		return false
	}
	if f.Supplier != "" && !containsFold(setup.SupplierName, f.Supplier) {
		return false
	}
	if f.Audited != "" {
		audited := setup.Audited.Bool()
		if (f.Audited == "yes" && !audited) || (f.Audited == "no" && audited) {
			return false
		}
	}
	if f.Order != "" && !containsFold(setup.OrderNumber, f.Order) {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
