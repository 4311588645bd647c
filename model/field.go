package model

// FieldType is the closed set of question kinds a survey can contain.
type FieldType string

const (
	ShortText    FieldType = "short_text"
	LongText     FieldType = "long_text"
	Email        FieldType = "email"
	Phone        FieldType = "phone"
	Currency     FieldType = "currency"
	PostalCode   FieldType = "postal_code"
	MultiSelect  FieldType = "multi_select"
	SingleSelect FieldType = "single_select"
	Dropdown     FieldType = "dropdown"
	StarRating   FieldType = "star_rating"
	Likert       FieldType = "likert"
	NumericScale FieldType = "numeric_scale"
	Ranking      FieldType = "ranking"
	DateTime     FieldType = "date_time"
	File         FieldType = "file"
	Divider      FieldType = "divider"
)

var fieldTypes = map[FieldType]bool{
	ShortText: true, LongText: true, Email: true, Phone: true,
	Currency: true, PostalCode: true, MultiSelect: true, SingleSelect: true,
	Dropdown: true, StarRating: true, Likert: true, NumericScale: true,
	Ranking: true, DateTime: true, File: true, Divider: true,
}

func (t FieldType) Valid() bool {
	return fieldTypes[t]
}

// HasOptions reports whether answers are drawn from Field.Options.
func (t FieldType) HasOptions() bool {
	switch t {
	case MultiSelect, SingleSelect, Dropdown, Likert, Ranking:
		return true
	}
	return false
}

// IsNumeric reports whether answers are numbers.
func (t FieldType) IsNumeric() bool {
	return t == StarRating || t == NumericScale
}

// IsText reports whether answers are free or masked text.
func (t FieldType) IsText() bool {
	switch t {
	case ShortText, LongText, Email, Phone, Currency, PostalCode, DateTime, File:
		return true
	}
	return false
}

type Field struct {
	ID           string      `json:"id"`
	Type         FieldType   `json:"type"`
	Label        string      `json:"label,omitempty"`
	SectionTitle string      `json:"sectionTitle,omitempty"`
	Description  string      `json:"description,omitempty"`
	Placeholder  string      `json:"placeholder,omitempty"`
	Required     bool        `json:"required"`
	Min          *int        `json:"min,omitempty"`
	Max          *int        `json:"max,omitempty"`
	Options      []string    `json:"options,omitempty"`
	Validation   *Validation `json:"validation,omitempty"`
}

// Validation holds constraints layered on top of the ones implied by the
// field type.
type Validation struct {
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	Message   string `json:"message,omitempty"`
	// Country selects the phone mask (ISO 3166 alpha-2), BR when empty.
	Country string `json:"country,omitempty"`
	// JustifyBelow asks for a justification on star ratings lower than it.
	JustifyBelow int `json:"justifyBelow,omitempty"`
}

func (f Field) IsDivider() bool {
	return f.Type == Divider
}

// Title is the heading a divider gives to the section it opens.
func (f Field) Title() string {
	if f.SectionTitle != "" {
		return f.SectionTitle
	}
	return f.Label
}

// Bounds returns the numeric range of the field, falling back to the type
// defaults: 1..5 stars and 0..10 for numeric scales.
func (f Field) Bounds() (min, max int) {
	switch f.Type {
	case StarRating:
		min, max = 1, 5
	case NumericScale:
		min, max = 0, 10
	}
	if f.Min != nil {
		min = *f.Min
	}
	if f.Max != nil {
		max = *f.Max
	}
	return
}
