// Package store persists completed test results and clinician notes in a
// spreadsheet workbook, one worksheet per test category. Rows are append-only
// and ordered by write time; the first row of every sheet is its header.
package store

import (
	"fmt"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04:05"
	timestampLayout = "2006-01-02 15:04:05"
)

// Store is the append-only result store. All writes take the exclusive lock
// for the whole find-row/append/flush sequence; reads take the shared lock
// and see whatever the last flush left behind.
//
// Store never fails its caller: every I/O problem is logged and reported as
// ok=false, and the workbook stays usable in memory even when the file on
// disk cannot be written.
type Store struct {
	path string

	mu sync.RWMutex
	wb *excelize.File
}

// Open loads (or creates) the workbook at path and ensures every declared
// category has its sheet and header row. Open never fails; see Initialize.
func Open(path string) *Store {
	s := &Store{path: path}
	s.Initialize()
	return s
}

// Initialize ensures the workbook and all declared sheets exist. Safe to call
// again on a live store: existing sheets and rows are left untouched.
// Failures are logged, not returned; the store degrades to memory-only.
func (s *Store) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wb == nil {
		wb, err := excelize.OpenFile(s.path)
		switch {
		case err == nil:
			s.wb = wb
		case os.IsNotExist(err):
			s.wb = excelize.NewFile()
		default:
			log.Printf("store: cannot open %s: %v (starting with an empty in-memory workbook)", s.path, err)
			s.wb = excelize.NewFile()
		}
	}

	for _, category := range Categories() {
		sc := schemaFor(category)
		if err := s.ensureSheet(sc.Sheet, sc.headers()); err != nil {
			log.Printf("store: sheet %s: %v", sc.Sheet, err)
		}
	}
	if err := s.ensureSheet(NotesSheet, notesHeaders); err != nil {
		log.Printf("store: sheet %s: %v", NotesSheet, err)
	}

	// Drop the workbook's default sheet once real ones exist.
	if idx, _ := s.wb.GetSheetIndex("Sheet1"); idx >= 0 {
		if err := s.wb.DeleteSheet("Sheet1"); err != nil {
			log.Printf("store: dropping default sheet: %v", err)
		}
	}

	if err := s.flush(); err != nil {
		log.Printf("store: cannot write %s: %v (results stay in memory)", s.path, err)
		return
	}
	log.Printf("store: workbook ready at %s", s.path)
}

// SubmitRecord appends one result row for category. Missing payload fields
// take their schema defaults; accuracy is computed here and stored. Unknown
// categories get a sheet with a generic single extra column on first use.
func (s *Store) SubmitRecord(category, patientName string, fields map[string]any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc := schemaFor(category)
	if err := s.ensureSheet(sc.Sheet, sc.headers()); err != nil {
		log.Printf("store: sheet %s: %v", sc.Sheet, err)
		return false
	}

	now := time.Now()
	total := intField(fields, "total_points", 0)
	correct := intField(fields, "correct_points", 0)

	row := []any{
		patientName,
		now.Format(dateLayout),
		stringField(fields, "start_time", now.Format(timeLayout)),
		stringField(fields, "end_time", now.Format(timeLayout)),
		numberField(fields, "duration", 0),
		total,
		correct,
		Accuracy(total, correct),
		stringField(fields, "doctor_notes", ""),
	}
	for _, f := range sc.Extra {
		row = append(row, f.value(fields))
	}

	if err := s.appendRow(sc.Sheet, row); err != nil {
		log.Printf("store: saving %s result for %s: %v", category, patientName, err)
		return false
	}
	if err := s.flush(); err != nil {
		log.Printf("store: flushing %s result for %s: %v", category, patientName, err)
		return false
	}
	log.Printf("store: saved %s result for patient %s", category, patientName)
	return true
}

// SubmitNote appends one clinician note row. The timestamp is taken from the
// payload when present, otherwise generated at call time.
func (s *Store) SubmitNote(patientName string, note map[string]any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSheet(NotesSheet, notesHeaders); err != nil {
		log.Printf("store: sheet %s: %v", NotesSheet, err)
		return false
	}

	row := []any{
		patientName,
		stringField(note, "timestamp", time.Now().Format(timestampLayout)),
		stringField(note, "symptoms", ""),
		stringField(note, "medical_concerns", ""),
		stringField(note, "additional_notes", ""),
	}

	if err := s.appendRow(NotesSheet, row); err != nil {
		log.Printf("store: saving notes for %s: %v", patientName, err)
		return false
	}
	if err := s.flush(); err != nil {
		log.Printf("store: flushing notes for %s: %v", patientName, err)
		return false
	}
	log.Printf("store: saved doctor notes for patient %s", patientName)
	return true
}

// PatientHistory returns every data row whose first column matches
// patientName, keyed by sheet name and in write order. The notes sheet is
// excluded. Unreadable sheets are skipped, not fatal.
func (s *Store) PatientHistory(patientName string) map[string][][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make(map[string][][]string)
	for _, sheet := range s.wb.GetSheetList() {
		if sheet == NotesSheet {
			continue
		}
		rows, err := s.wb.GetRows(sheet)
		if err != nil {
			log.Printf("store: reading %s: %v", sheet, err)
			continue
		}
		var matched [][]string
		for i, row := range rows {
			if i == 0 || len(row) == 0 {
				continue // header
			}
			if row[0] == patientName {
				matched = append(matched, row)
			}
		}
		if len(matched) > 0 {
			history[sheet] = matched
		}
	}
	return history
}

// ensureSheet creates the sheet with its header row if it does not exist yet.
func (s *Store) ensureSheet(sheet string, headers []string) error {
	if idx, err := s.wb.GetSheetIndex(sheet); err != nil {
		return err
	} else if idx >= 0 {
		return nil
	}
	if _, err := s.wb.NewSheet(sheet); err != nil {
		return err
	}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := s.wb.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	styleID, err := s.wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return s.wb.SetCellStyle(sheet, "A1", last, styleID)
}

// appendRow writes values into the first row after the current last one.
func (s *Store) appendRow(sheet string, row []any) error {
	rows, err := s.wb.GetRows(sheet)
	if err != nil {
		return err
	}
	next := len(rows) + 1
	for col, v := range row {
		cell, err := excelize.CoordinatesToCellName(col+1, next)
		if err != nil {
			return err
		}
		if err := s.wb.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) flush() error {
	return s.wb.SaveAs(s.path)
}

// Accuracy is correct/total as a percentage, rounded to two decimals.
// A zero total yields 0, not an error.
func Accuracy(total, correct int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}

// value coerces the payload entry for f, falling back to the field default.
func (f Field) value(fields map[string]any) any {
	v, ok := fields[f.Key]
	if !ok || v == nil {
		return f.fallback()
	}
	switch f.Kind {
	case KindInt:
		if n, ok := toInt(v); ok {
			return n
		}
	case KindNumber:
		if n, ok := toFloat(v); ok {
			return n
		}
	case KindList:
		return fmt.Sprint(v)
	default:
		return fmt.Sprint(v)
	}
	return f.fallback()
}

func (f Field) fallback() any {
	if f.Default != nil {
		return f.Default
	}
	switch f.Kind {
	case KindInt:
		return 0
	case KindNumber:
		return 0.0
	case KindList:
		return "[]"
	default:
		return ""
	}
}

// Payload values arrive from JSON, so numbers are usually float64.

func intField(fields map[string]any, key string, def int) int {
	if v, ok := fields[key]; ok {
		if n, ok := toInt(v); ok {
			return n
		}
	}
	return def
}

func numberField(fields map[string]any, key string, def float64) float64 {
	if v, ok := fields[key]; ok {
		if n, ok := toFloat(v); ok {
			return n
		}
	}
	return def
}

func stringField(fields map[string]any, key, def string) string {
	if v, ok := fields[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
