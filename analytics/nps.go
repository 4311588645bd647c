package analytics

import "github.com/mbolis/survey-studio/model"

// NPSBreakdown splits 0-10 scores into promoters (9-10), passives (7-8)
// and detractors (0-6). Score is the classic Net Promoter Score, the
// promoter share minus the detractor share, from -100 to 100. Average is
// the plain mean of the scores, rounded to one decimal.
type NPSBreakdown struct {
	Total        int     `json:"total"`
	Promoters    int     `json:"promoters"`
	Passives     int     `json:"passives"`
	Detractors   int     `json:"detractors"`
	PromoterPct  int     `json:"promoterPercentage"`
	PassivePct   int     `json:"passivePercentage"`
	DetractorPct int     `json:"detractorPercentage"`
	Score        int     `json:"score"`
	Average      float64 `json:"average"`
}

// IsNPSField reports whether a field collects 0-10 recommendation scores.
func IsNPSField(f model.Field) bool {
	if f.Type != model.NumericScale {
		return false
	}
	min, max := f.Bounds()
	return min == 0 && max == 10
}

func NPS(f model.Field, responses []model.Response) *NPSBreakdown {
	xs := numbers(f, responses)
	if len(xs) == 0 {
		return nil
	}

	b := &NPSBreakdown{Total: len(xs), Average: round1(mean(xs))}
	for _, x := range xs {
		switch {
		case x >= 9:
			b.Promoters++
		case x >= 7:
			b.Passives++
		default:
			b.Detractors++
		}
	}
	b.PromoterPct = percent(b.Promoters, b.Total)
	b.PassivePct = percent(b.Passives, b.Total)
	b.DetractorPct = percent(b.Detractors, b.Total)
	b.Score = round(100 * float64(b.Promoters-b.Detractors) / float64(b.Total))
	return b
}
