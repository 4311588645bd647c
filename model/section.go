package model

// DefaultSectionTitle names the fields that precede the first divider.
const DefaultSectionTitle = "General"

// Section is a run of non-divider fields. Divider is the field that opened
// it, nil for the leading section.
type Section struct {
	Title   string  `json:"title"`
	Divider *Field  `json:"divider,omitempty"`
	Fields  []Field `json:"fields"`
}

// Partition splits fields into sections at each divider. A divider that is
// followed by no field before the next divider (or the end) yields no
// section.
func Partition(fields []Field) []Section {
	sections := []Section{}
	current := Section{Title: DefaultSectionTitle}

	for i := range fields {
		f := fields[i]
		if !f.IsDivider() {
			current.Fields = append(current.Fields, f)
			continue
		}
		if len(current.Fields) > 0 {
			sections = append(sections, current)
		}
		current = Section{Title: f.Title(), Divider: &f}
	}
	if len(current.Fields) > 0 {
		sections = append(sections, current)
	}
	return sections
}

// Flatten is the inverse of Partition for lists without empty sections.
func Flatten(sections []Section) []Field {
	var fields []Field
	for _, s := range sections {
		if s.Divider != nil {
			fields = append(fields, *s.Divider)
		}
		fields = append(fields, s.Fields...)
	}
	return fields
}
