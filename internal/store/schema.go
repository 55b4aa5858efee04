package store

// Kind tells the row builder how to coerce and default a payload value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindNumber
	KindList // stored as its text rendering, defaults to "[]"
)

// Field is one category-specific column: the payload key it is read from,
// the column header it is written under, and how to coerce it.
type Field struct {
	Key     string
	Header  string
	Kind    Kind
	Default any
}

// Schema maps a category to its worksheet and the columns that follow the
// common ones.
type Schema struct {
	Sheet string
	Extra []Field
}

// NotesCategory is the reserved category for clinician notes. It has its own
// column set and is excluded from patient history.
const NotesCategory = "notes"

// NotesSheet is the worksheet holding clinician notes.
const NotesSheet = "Doctor Notes"

// commonHeaders lead every test sheet, in this order. The first column must
// stay Patient Name: history lookups match on it.
var commonHeaders = []string{
	"Patient Name", "Test Date", "Start Time", "End Time",
	"Duration (seconds)", "Total Points", "Correct Points",
	"Accuracy (%)", "Doctor Notes",
}

var notesHeaders = []string{
	"Patient Name", "Date", "Symptoms", "Medical Concerns", "Additional Notes",
}

// schemas is the declared category table. Defined once here; never mutated at
// runtime. Categories outside this table get a generic schema on first use.
var schemas = map[string]Schema{
	"visual_field": {
		Sheet: "Visual Field",
		Extra: []Field{
			{Key: "points_tested", Header: "Points Tested", Kind: KindInt},
			{Key: "sensitivity_map", Header: "Sensitivity Map", Kind: KindList},
			{Key: "defects_detected", Header: "Defects Detected", Kind: KindInt},
		},
	},
	"csv1000": {
		Sheet: "CSV-1000",
		Extra: []Field{
			{Key: "language", Header: "Language", Kind: KindString, Default: "English"},
			{Key: "contrast_levels", Header: "Contrast Levels", Kind: KindList},
			{Key: "letter_accuracy", Header: "Letter Accuracy", Kind: KindInt},
		},
	},
	"edge": {
		Sheet: "Edge Detection",
		Extra: []Field{
			{Key: "specific_data", Header: "Test Specific Data", Kind: KindString},
		},
	},
	"motion": {
		Sheet: "Motion Detection",
		Extra: []Field{
			{Key: "specific_data", Header: "Test Specific Data", Kind: KindString},
		},
	},
	"pattern": {
		Sheet: "Pattern Recognition",
		Extra: []Field{
			{Key: "specific_data", Header: "Test Specific Data", Kind: KindString},
		},
	},
	"pelli_robinson": {
		Sheet: "Pelli-Robinson",
		Extra: []Field{
			{Key: "language", Header: "Language", Kind: KindString, Default: "English"},
			{Key: "contrast_sensitivity", Header: "Contrast Sensitivity", Kind: KindNumber},
			{Key: "log_units", Header: "Log Units", Kind: KindNumber},
		},
	},
	"sparcs": {
		Sheet: "SPARCS",
		Extra: []Field{
			{Key: "quadrant_1", Header: "Quadrant 1", Kind: KindInt},
			{Key: "quadrant_2", Header: "Quadrant 2", Kind: KindInt},
			{Key: "quadrant_3", Header: "Quadrant 3", Kind: KindInt},
			{Key: "quadrant_4", Header: "Quadrant 4", Kind: KindInt},
		},
	},
}

// Categories returns the declared category keys (notes excluded).
func Categories() []string {
	out := make([]string, 0, len(schemas))
	for k := range schemas {
		out = append(out, k)
	}
	return out
}

// IsCategory reports whether key is a declared test category.
func IsCategory(key string) bool {
	_, ok := schemas[key]
	return ok
}

// schemaFor resolves a category key. Unknown categories get a sheet named
// after the key and a single generic column.
func schemaFor(category string) Schema {
	if s, ok := schemas[category]; ok {
		return s
	}
	return Schema{
		Sheet: category,
		Extra: []Field{
			{Key: "specific_data", Header: "Test Specific Data", Kind: KindString},
		},
	}
}

func (s Schema) headers() []string {
	h := make([]string, 0, len(commonHeaders)+len(s.Extra))
	h = append(h, commonHeaders...)
	for _, f := range s.Extra {
		h = append(h, f.Header)
	}
	return h
}
