package panel

import "strconv"

// KeyColumn is the normalized name of the composite key column.
const KeyColumn = "county-year"

// Column identifies one of the known numeric panel columns.
type Column int

const (
	SpendingPerStudent Column = iota
	StudentTeacherRatio
	PerPupilInstructionalSpending
	MathScore
	ReadingScore
	GraduationRate
	HigherEducationPursuitRate
	Enrollment
)

// Columns lists every known numeric column in canonical order.
var Columns = []Column{
	SpendingPerStudent,
	StudentTeacherRatio,
	PerPupilInstructionalSpending,
	MathScore,
	ReadingScore,
	GraduationRate,
	HigherEducationPursuitRate,
	Enrollment,
}

var columnNames = map[Column]string{
	SpendingPerStudent:            "spending_per_student",
	StudentTeacherRatio:           "student_teacher_ratio",
	PerPupilInstructionalSpending: "per_pupil_instructional_spending",
	MathScore:                     "math_score",
	ReadingScore:                  "reading_score",
	GraduationRate:                "graduation_rate",
	HigherEducationPursuitRate:    "higher_education_pursuit_rate",
	Enrollment:                    "enrollment",
}

var columnLabels = map[Column]string{
	SpendingPerStudent:            "Spending per Student ($)",
	StudentTeacherRatio:           "Student-Teacher Ratio",
	PerPupilInstructionalSpending: "Per Pupil Instructional Spending ($)",
	MathScore:                     "Math Score",
	ReadingScore:                  "Reading Score",
	GraduationRate:                "Graduation Rate (%)",
	HigherEducationPursuitRate:    "Higher Education Pursuit Rate (%)",
	Enrollment:                    "Enrollment",
}

// String returns the normalized header name of the column.
func (c Column) String() string {
	if name, ok := columnNames[c]; ok {
		return name
	}
	return "column(" + strconv.Itoa(int(c)) + ")"
}

// Label returns the human readable label used in charts and narration.
func (c Column) Label() string {
	if label, ok := columnLabels[c]; ok {
		return label
	}
	return c.String()
}

// MarshalText encodes the column as its header name.
func (c Column) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a header name, applying the usual normalization.
func (c *Column) UnmarshalText(text []byte) error {
	col, ok := ColumnByName(string(text))
	if !ok {
		return &UnknownColumnError{Name: string(text)}
	}
	*c = col
	return nil
}

// ColumnByName resolves a header name to a known column after normalization.
func ColumnByName(name string) (Column, bool) {
	normalized := NormalizeHeader(name)
	for col, n := range columnNames {
		if n == normalized {
			return col, true
		}
	}
	return 0, false
}

// Value is an optional numeric cell.
type Value struct {
	Float float64
	Valid bool
}

// Some returns a present value.
func Some(f float64) Value {
	return Value{Float: f, Valid: true}
}

// String formats the value for display, "N/A" when absent.
func (v Value) String() string {
	if !v.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(v.Float, 'f', -1, 64)
}

// Record is one normalized panel row.
type Record struct {
	Entity                        string `json:"entity"`
	Year                          int    `json:"year"`
	SpendingPerStudent            Value  `json:"-"`
	StudentTeacherRatio           Value  `json:"-"`
	PerPupilInstructionalSpending Value  `json:"-"`
	MathScore                     Value  `json:"-"`
	ReadingScore                  Value  `json:"-"`
	GraduationRate                Value  `json:"-"`
	HigherEducationPursuitRate    Value  `json:"-"`
	Enrollment                    Value  `json:"-"`
}

// field returns a pointer to the value stored for col.
func (r *Record) field(col Column) *Value {
	switch col {
	case SpendingPerStudent:
		return &r.SpendingPerStudent
	case StudentTeacherRatio:
		return &r.StudentTeacherRatio
	case PerPupilInstructionalSpending:
		return &r.PerPupilInstructionalSpending
	case MathScore:
		return &r.MathScore
	case ReadingScore:
		return &r.ReadingScore
	case GraduationRate:
		return &r.GraduationRate
	case HigherEducationPursuitRate:
		return &r.HigherEducationPursuitRate
	case Enrollment:
		return &r.Enrollment
	}
	return nil
}

// Get returns the value of col and whether it is present.
func (r Record) Get(col Column) (float64, bool) {
	v := r.field(col)
	if v == nil || !v.Valid {
		return 0, false
	}
	return v.Float, true
}

// Set stores a present value for col.
func (r *Record) Set(col Column, f float64) {
	if v := r.field(col); v != nil {
		*v = Some(f)
	}
}

// Values returns the display form of every known column keyed by header
// name. Absent values render as "N/A".
func (r Record) Values() map[string]string {
	out := make(map[string]string, len(Columns))
	for _, col := range Columns {
		out[col.String()] = r.field(col).String()
	}
	return out
}
