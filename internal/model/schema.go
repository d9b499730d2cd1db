package model

// ColumnType decides how a raw field is coerced on load.
type ColumnType int

const (
	ColumnNumber ColumnType = iota
	ColumnText
)

// ColumnSpec describes one column of a fixed schema.
type ColumnSpec struct {
	Name string
	Type ColumnType
}

// Schema is an ordered list of columns. A nil Schema means "keep whatever the
// header has".
type Schema []ColumnSpec

func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// HeartStudySchema is the column mapping of the heart-disease dataset: every
// field is numeric.
var HeartStudySchema = Schema{
	{Name: "male", Type: ColumnNumber},
	{Name: "age", Type: ColumnNumber},
	{Name: "education", Type: ColumnNumber},
	{Name: "currentSmoker", Type: ColumnNumber},
	{Name: "cigsPerDay", Type: ColumnNumber},
	{Name: "BPMeds", Type: ColumnNumber},
	{Name: "prevalentStroke", Type: ColumnNumber},
	{Name: "prevalentHyp", Type: ColumnNumber},
	{Name: "diabetes", Type: ColumnNumber},
	{Name: "totChol", Type: ColumnNumber},
	{Name: "sysBP", Type: ColumnNumber},
	{Name: "diaBP", Type: ColumnNumber},
	{Name: "BMI", Type: ColumnNumber},
	{Name: "heartRate", Type: ColumnNumber},
	{Name: "glucose", Type: ColumnNumber},
	{Name: "TenYearCHD", Type: ColumnNumber},
}

// EducationLabel maps the education code to the label used by the charts.
func EducationLabel(v Value) string {
	f, ok := v.Float()
	if !ok {
		return "Unknown"
	}
	switch f {
	case 1:
		return "Primary Education"
	case 2:
		return "Secondary Education"
	case 3:
		return "High School"
	case 4:
		return "College"
	default:
		return "Unknown"
	}
}

// EducationLabels is the display order of EducationLabel results.
var EducationLabels = []string{"Primary Education", "Secondary Education", "High School", "College", "Unknown"}
