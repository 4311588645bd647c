package analytics

import "github.com/mbolis/survey-studio/model"

// FieldReport is the aggregate of one question. Only the members matching
// the field type are set.
type FieldReport struct {
	FieldID    string          `json:"fieldId"`
	Label      string          `json:"label"`
	Type       model.FieldType `json:"type"`
	Responses  int             `json:"responses"`
	Categories []Count         `json:"categories,omitempty"`
	Numeric    *NumericStats   `json:"numeric,omitempty"`
	Ranking    []RankScore     `json:"ranking,omitempty"`
	NPS        *NPSBreakdown   `json:"nps,omitempty"`
	Texts      []string        `json:"texts,omitempty"`
}

type Report struct {
	Summary Summary       `json:"summary"`
	Fields  []FieldReport `json:"fields"`
}

// Analyze builds the full dashboard report of a survey.
func Analyze(fields []model.Field, responses []model.Response) Report {
	report := Report{
		Summary: Summarize(fields, responses),
		Fields:  []FieldReport{},
	}
	for _, f := range fields {
		if f.IsDivider() {
			continue
		}
		report.Fields = append(report.Fields, AnalyzeField(f, responses))
	}
	return report
}

func AnalyzeField(f model.Field, responses []model.Response) FieldReport {
	fr := FieldReport{
		FieldID:   f.ID,
		Label:     f.Label,
		Type:      f.Type,
		Responses: len(answers(f, responses)),
	}

	switch f.Type {
	case model.SingleSelect, model.Dropdown:
		fr.Categories = Categorical(f, responses)
	case model.MultiSelect:
		fr.Categories = MultiSelect(f, responses)
	case model.Likert:
		fr.Categories = Likert(f, responses)
	case model.Ranking:
		fr.Ranking = Ranking(f, responses)
	case model.StarRating:
		fr.Numeric = Numeric(f, responses)
	case model.NumericScale:
		fr.Numeric = Numeric(f, responses)
		if IsNPSField(f) {
			fr.NPS = NPS(f, responses)
		}
	default:
		if f.Type.IsText() {
			fr.Texts = Texts(f, responses)
		}
	}
	return fr
}
