package schema

import "slices"

// DataType is the semantic type of a CDM field.
type DataType string

const (
	DataTypeUUID        DataType = "uuid"
	DataTypeCategorical DataType = "categorical"
	DataTypeDate        DataType = "date"
	DataTypeBool        DataType = "bool"
	DataTypeNumber      DataType = "number"
)

// DateFormatHint is the format hint carried by every date field.
const DateFormatHint = "dd/mm/yyyy"

// FieldDefinition describes one CDM field.
type FieldDefinition struct {
	ID       string
	Name     string
	DataType DataType
	// AllowedValues is the ordered list of permitted values, when the field has one.
	AllowedValues []string
	// FormatHint is a free-form hint used instead of AllowedValues (e.g. "dd/mm/yyyy").
	FormatHint string
	// PreferredStandard references an external coding standard, e.g. "SCT (69280009)".
	PreferredStandard string
	Description       string
}

// IsCategorical reports whether the field takes a value from AllowedValues.
func (f FieldDefinition) IsCategorical() bool {
	return f.DataType == DataTypeCategorical
}

// Allows reports whether v is one of the field's allowed values.
// Fields without an allowed value list accept anything.
func (f FieldDefinition) Allows(v string) bool {
	if len(f.AllowedValues) == 0 {
		return true
	}

	return slices.Contains(f.AllowedValues, v)
}

var (
	specialties = []string{"orthopedic surgeon", "general surgeon", "trauma surgeon"}

	registry = []FieldDefinition{
		{
			ID: "1A", Name: "Patient ID", DataType: DataTypeUUID,
			Description: "A unique patient identification number.",
		},
		{
			ID: "2A", Name: "Primary Intervention", DataType: DataTypeCategorical,
			AllowedValues: []string{"HIPPR", "TOTKNIE", "HMKNIE"},
			Description:   "Primary total hip replacement or primary total or hemi knee replacement performed within surveillance period.",
		},
		{
			ID: "3A", Name: "Date of Surgery", DataType: DataTypeDate, FormatHint: DateFormatHint,
			Description: "Date the primary hip or knee replacement was performed.",
		},
		{
			ID: "4A", Name: "Operation Side", DataType: DataTypeCategorical,
			AllowedValues: []string{"left", "right"},
			Description:   "Was the surgery performed in the left or right joint?",
		},
		{
			ID: "5A", Name: "Previous Intervention", DataType: DataTypeBool,
			AllowedValues: []string{"yes", "no"},
			Description:   "Previous operations on the hip or knee joint in question that are considered exclusion criteria (i.e., not arthroscopy, meniscectomy or cruciate ligament reconstruction).",
		},
		{
			ID: "6A", Name: "Discharge Date", DataType: DataTypeDate, FormatHint: DateFormatHint,
			PreferredStandard: "SCT (442864001)",
			Description:       "Discharge date of admission in which indicator intervention took place.",
		},
		{
			ID: "7A", Name: "Readmission Date", DataType: DataTypeDate, FormatHint: DateFormatHint,
			Description: "Date of admission of any readmission to the treating specialty indicator procedure within 120 days after the main procedure.",
		},
		{
			ID: "8A", Name: "Treating Specialty", DataType: DataTypeCategorical,
			AllowedValues:     specialties,
			PreferredStandard: "SCT (69280009)",
			Description:       "Specialty where the patient has been readmitted.",
		},
		{
			ID: "9A", Name: "Reoperation Date", DataType: DataTypeDate, FormatHint: DateFormatHint,
			Description: "Date of any necessary orthopedic reoperation within 120 days after the indicator procedure.",
		},
		{
			ID: "10A", Name: "Reoperation Specialty", DataType: DataTypeCategorical,
			AllowedValues:     specialties,
			PreferredStandard: "SCT (69280009)",
			Description:       "Specialty that performed the reoperation.",
		},
		{
			ID: "11A", Name: "Culture Collection Date", DataType: DataTypeDate, FormatHint: DateFormatHint,
			Description: "Date of culture for microbiological examination from day 1 after the indicator procedure up to and including 120 days after the main procedure.",
		},
		{
			ID: "12A", Name: "Sample number culture collection", DataType: DataTypeNumber,
			PreferredStandard: "SCT (260385009)",
			Description:       "Identification number of the material taken for microbiological examination within 120 days after the main procedure.",
		},
		{
			ID: "13A", Name: "Breeding Material", DataType: DataTypeCategorical,
			AllowedValues:     []string{"blood (sample)", "wound fluid sample (sample)"},
			PreferredStandard: "SCT (61594008)",
			Description:       "The material taken for microbiological examination within 120 days after the main procedure.",
		},
		{
			ID: "14A", Name: "Result", DataType: DataTypeCategorical,
			AllowedValues:     []string{"positive", "negative"},
			PreferredStandard: "SCT (260385009)",
			Description:       "Result of the microbiological examination within 120 days after the main procedure.",
		},
		{
			ID: "15A", Name: "Antibiotic Code", DataType: DataTypeNumber,
			FormatHint:        "ATCDDD - ATC/DDD Index (fhi.no)",
			PreferredStandard: "SCT (281789004)",
			Description:       "Code of any antibiotics used in the period up to 120 days after the primary hip or knee prosthesis.",
		},
		{
			ID: "16A", Name: "Prescription Start Date", DataType: DataTypeDate, FormatHint: DateFormatHint,
			PreferredStandard: "SCT (413946009)",
			Description:       "Start date of any use of antibiotics in the period up to 120 days after the primary hip or knee prosthesis.",
		},
		{
			ID: "17A", Name: "Prescription End Date", DataType: DataTypeDate, FormatHint: DateFormatHint,
			PreferredStandard: "SCT (413947000)",
			Description:       "End date of any use of antibiotics in the period up to 120 days after the primary hip or knee prosthesis.",
		},
	}

	byName = func() map[string]int {
		idx := make(map[string]int, len(registry))
		for i, f := range registry {
			idx[f.Name] = i
		}

		return idx
	}()
)

// Fields returns the CDM field definitions in registry order.
// The returned slice is a copy; AllowedValues slices are cloned as well.
func Fields() []FieldDefinition {
	out := make([]FieldDefinition, len(registry))
	for i, f := range registry {
		f.AllowedValues = slices.Clone(f.AllowedValues)
		out[i] = f
	}

	return out
}

// Names returns the CDM field names in registry order.
func Names() []string {
	names := make([]string, len(registry))
	for i, f := range registry {
		names[i] = f.Name
	}

	return names
}

// Lookup returns the field definition with the given name.
func Lookup(name string) (FieldDefinition, bool) {
	i, ok := byName[name]
	if !ok {
		return FieldDefinition{}, false
	}

	f := registry[i]
	f.AllowedValues = slices.Clone(f.AllowedValues)

	return f, true
}

// Len returns the number of CDM fields.
func Len() int {
	return len(registry)
}
