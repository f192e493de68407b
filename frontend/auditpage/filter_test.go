package auditpage

import (
	"net/url"
	"testing"

	"setuptrack/models"
)

func sampleCells() map[string][]models.SetupRecord {
	return map[string][]models.SetupRecord{
		"CELL_ASSEMBLY": {
			{OrderNumber: "ORD100", SupplierName: "Maria", Timestamp: "2026-03-10_08-00-00", Audited: true, AuditorName: "Carla"},
			{OrderNumber: "ORD200", SupplierName: "Jo", Timestamp: "2026-03-14_09-00-00"},
		},
		"CELL_PAINT": {
			{OrderNumber: "ORD300", SupplierName: "Maria", Timestamp: "2026-02-01_10-00-00"},
		},
	}
}

func TestFiltersEmptyPassesThrough(t *testing.T) {
	cells := sampleCells()
	got := Filters{}.Apply(cells)
	if len(got) != 2 {
		t.Fatalf("empty filter must keep everything: %v", got)
	}
}

func TestFilterByCellSubstring(t *testing.T) {
	got := Filters{Cell: "paint"}.Apply(sampleCells())
	if len(got) != 1 || len(got["CELL_PAINT"]) != 1 {
		t.Fatalf("cell filter wrong: %v", got)
	}
}

func TestFilterByDateRange(t *testing.T) {
	got := Filters{DateStart: "2026-03-01", DateEnd: "2026-03-12"}.Apply(sampleCells())
	if len(got) != 1 {
		t.Fatalf("expected one cell, got %v", got)
	}
	setups := got["CELL_ASSEMBLY"]
	if len(setups) != 1 || setups[0].OrderNumber != "ORD100" {
		t.Fatalf("date range wrong: %v", setups)
	}
}

func TestFilterByAuditedStatus(t *testing.T) {
	got := Filters{Audited: "yes"}.Apply(sampleCells())
	if len(got) != 1 || len(got["CELL_ASSEMBLY"]) != 1 || got["CELL_ASSEMBLY"][0].OrderNumber != "ORD100" {
		t.Fatalf("audited=yes wrong: %v", got)
	}

	got = Filters{Audited: "no"}.Apply(sampleCells())
	if len(got["CELL_ASSEMBLY"]) != 1 || got["CELL_ASSEMBLY"][0].OrderNumber != "ORD200" {
		t.Fatalf("audited=no wrong: %v", got)
	}
}

func TestFilterBySupplierAndAuditor(t *testing.T) {
	got := Filters{Supplier: "maria"}.Apply(sampleCells())
	if len(got) != 2 || len(got["CELL_ASSEMBLY"]) != 1 {
		t.Fatalf("supplier filter wrong: %v", got)
	}

	got = Filters{Auditor: "carla"}.Apply(sampleCells())
	if len(got) != 1 || got["CELL_ASSEMBLY"][0].AuditorName != "Carla" {
		t.Fatalf("auditor filter wrong: %v", got)
	}
}

func TestFilterDropsEmptyCells(t *testing.T) {
	got := Filters{Order: "ord300"}.Apply(sampleCells())
	if _, ok := got["CELL_ASSEMBLY"]; ok {
		t.Fatalf("cells with no matching setups must be dropped")
	}
	if len(got["CELL_PAINT"]) != 1 {
		t.Fatalf("order filter wrong: %v", got)
	}
}

func TestFiltersFromQuery(t *testing.T) {
	q := url.Values{}
	q.Set("filter_cell", "CELL")
	q.Set("filter_audited", "yes")
	q.Set("filter_date_start", "2026-01-01")

	f := FiltersFromQuery(q)
	if f.Cell != "CELL" || f.Audited != "yes" || f.DateStart != "2026-01-01" {
		t.Fatalf("unexpected filters: %+v", f)
	}
	if f.Empty() {
		t.Fatalf("filters must not be empty")
	}
}
