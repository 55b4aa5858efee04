package store

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func tempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.xlsx")
	return Open(path), path
}

func sheetRows(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	wb, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()
	rows, err := wb.GetRows(sheet)
	if err != nil {
		t.Fatalf("read sheet %s: %v", sheet, err)
	}
	return rows
}

func TestSubmitRecordComputesAccuracy(t *testing.T) {
	s, path := tempStore(t)

	ok := s.SubmitRecord("visual_field", "Jane Doe", map[string]any{
		"duration":       float64(120),
		"total_points":   float64(54),
		"correct_points": float64(48),
	})
	if !ok {
		t.Fatal("SubmitRecord returned false")
	}

	rows := sheetRows(t, path, "Visual Field")
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 data row, got %d rows", len(rows))
	}
	if got := rows[1][7]; got != "88.89" {
		t.Errorf("accuracy column: expected 88.89, got %q", got)
	}
	if got := rows[1][0]; got != "Jane Doe" {
		t.Errorf("patient column: expected Jane Doe, got %q", got)
	}
}

func TestZeroTotalPointsMeansZeroAccuracy(t *testing.T) {
	s, path := tempStore(t)

	if !s.SubmitRecord("motion", "A", map[string]any{"total_points": float64(0), "correct_points": float64(0)}) {
		t.Fatal("SubmitRecord returned false")
	}
	rows := sheetRows(t, path, "Motion Detection")
	if got := rows[1][7]; got != "0" {
		t.Errorf("accuracy column: expected 0, got %q", got)
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	s, path := tempStore(t)
	if !s.SubmitRecord("sparcs", "B", map[string]any{"total_points": float64(10), "correct_points": float64(5)}) {
		t.Fatal("SubmitRecord returned false")
	}

	// Re-initializing a live store and reopening the same file must not
	// duplicate headers or rows.
	s.Initialize()
	s2 := Open(path)
	s2.Initialize()

	rows := sheetRows(t, path, "SPARCS")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows after re-init, got %d", len(rows))
	}
	if rows[0][0] != "Patient Name" {
		t.Errorf("first row is not the header: %v", rows[0])
	}
}

func TestRowsKeepWriteOrder(t *testing.T) {
	s, path := tempStore(t)

	names := []string{"first", "second", "third", "fourth"}
	for _, n := range names {
		if !s.SubmitRecord("edge", n, nil) {
			t.Fatalf("SubmitRecord(%s) returned false", n)
		}
	}

	rows := sheetRows(t, path, "Edge Detection")
	if len(rows) != len(names)+1 {
		t.Fatalf("expected %d rows, got %d", len(names)+1, len(rows))
	}
	for i, n := range names {
		if rows[i+1][0] != n {
			t.Errorf("row %d: expected %q, got %q", i+1, n, rows[i+1][0])
		}
	}
}

func TestConcurrentWritesToDifferentCategories(t *testing.T) {
	s, path := tempStore(t)

	const perCategory = 5
	var wg sync.WaitGroup
	for _, cat := range []string{"motion", "pattern"} {
		wg.Add(1)
		go func(cat string) {
			defer wg.Done()
			for i := 0; i < perCategory; i++ {
				s.SubmitRecord(cat, "C", nil)
			}
		}(cat)
	}
	wg.Wait()

	for _, sheet := range []string{"Motion Detection", "Pattern Recognition"} {
		rows := sheetRows(t, path, sheet)
		if len(rows) != perCategory+1 {
			t.Errorf("%s: expected %d rows, got %d", sheet, perCategory+1, len(rows))
		}
	}
}

func TestPatientHistoryFiltersByPatientAndSkipsNotes(t *testing.T) {
	s, _ := tempStore(t)

	s.SubmitRecord("visual_field", "Jane Doe", map[string]any{"total_points": float64(54), "correct_points": float64(48)})
	s.SubmitRecord("visual_field", "John Roe", nil)
	s.SubmitRecord("sparcs", "Jane Doe", nil)
	s.SubmitNote("Jane Doe", map[string]any{"symptoms": "blurred vision"})

	history := s.PatientHistory("Jane Doe")

	if len(history["Visual Field"]) != 1 {
		t.Errorf("expected 1 Visual Field row, got %d", len(history["Visual Field"]))
	}
	if len(history["SPARCS"]) != 1 {
		t.Errorf("expected 1 SPARCS row, got %d", len(history["SPARCS"]))
	}
	if _, ok := history[NotesSheet]; ok {
		t.Error("history must not include the notes sheet")
	}
	if _, ok := history["Edge Detection"]; ok {
		t.Error("categories without matching rows must be omitted")
	}
	for sheet, rows := range history {
		for _, row := range rows {
			if row[0] != "Jane Doe" {
				t.Errorf("%s: row for wrong patient: %v", sheet, row)
			}
		}
	}
}

func TestUnknownCategoryIsProvisionedOnFirstUse(t *testing.T) {
	s, path := tempStore(t)

	if !s.SubmitRecord("unknown_category", "X", map[string]any{"specific_data": "raw"}) {
		t.Fatal("SubmitRecord returned false for unknown category")
	}

	rows := sheetRows(t, path, "unknown_category")
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	if got := rows[0][len(rows[0])-1]; got != "Test Specific Data" {
		t.Errorf("generic extra header: expected Test Specific Data, got %q", got)
	}
	if got := rows[1][9]; got != "raw" {
		t.Errorf("generic extra value: expected raw, got %q", got)
	}
}

func TestSchemaDefaultsFillMissingFields(t *testing.T) {
	s, path := tempStore(t)

	s.SubmitRecord("csv1000", "D", map[string]any{
		"contrast_levels": []any{float64(1), float64(2)},
	})

	rows := sheetRows(t, path, "CSV-1000")
	row := rows[1]
	if got := row[9]; got != "English" {
		t.Errorf("language default: expected English, got %q", got)
	}
	if got := row[10]; got != "[1 2]" {
		t.Errorf("contrast levels rendering: expected [1 2], got %q", got)
	}
	if got := row[11]; got != "0" {
		t.Errorf("letter accuracy default: expected 0, got %q", got)
	}
}

func TestSubmitNoteFillsTimestamp(t *testing.T) {
	s, path := tempStore(t)

	if !s.SubmitNote("Jane Doe", map[string]any{
		"symptoms":         "halos around lights",
		"medical_concerns": "elevated IOP",
	}) {
		t.Fatal("SubmitNote returned false")
	}

	rows := sheetRows(t, path, NotesSheet)
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 note, got %d rows", len(rows))
	}
	if _, err := time.Parse(timestampLayout, rows[1][1]); err != nil {
		t.Errorf("timestamp column not auto-filled: %q (%v)", rows[1][1], err)
	}
	if rows[1][2] != "halos around lights" {
		t.Errorf("symptoms column: got %q", rows[1][2])
	}
}
