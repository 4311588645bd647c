// Package analytics turns a survey's fields and collected responses into
// display-ready aggregates. Every function is pure and total: no data gives
// nil or an empty slice, never an error.
package analytics

import (
	"math"

	"github.com/mbolis/survey-studio/model"
)

// Summary holds the survey-level KPIs shown on the dashboard cards.
type Summary struct {
	TotalResponses    int      `json:"totalResponses"`
	AverageRating     *float64 `json:"averageRating,omitempty"`
	SatisfactionScore *int     `json:"satisfactionScore,omitempty"`
	CompletionRate    int      `json:"completionRate"`
}

// Summarize computes the survey-level KPIs. The average rating pools every
// star answer of every star field; the satisfaction score rescales that 1-5
// mean onto 0-100.
func Summarize(fields []model.Field, responses []model.Response) Summary {
	s := Summary{
		TotalResponses: len(responses),
		CompletionRate: completionRate(fields, responses),
	}

	var ratings []float64
	for _, f := range fields {
		if f.Type == model.StarRating {
			ratings = append(ratings, numbers(f, responses)...)
		}
	}
	if len(ratings) == 0 {
		return s
	}

	avg := mean(ratings)
	score := clamp(round((avg-1)/4*100), 0, 100)
	s.AverageRating = &avg
	s.SatisfactionScore = &score
	return s
}

func completionRate(fields []model.Field, responses []model.Response) int {
	var required []model.Field
	for _, f := range fields {
		if f.Required && !f.IsDivider() {
			required = append(required, f)
		}
	}
	if len(required) == 0 || len(responses) == 0 {
		return 100
	}

	complete := 0
	for _, r := range responses {
		if answeredAll(required, r) {
			complete++
		}
	}
	return percent(complete, len(responses))
}

func answeredAll(fields []model.Field, r model.Response) bool {
	for _, f := range fields {
		if r.Answer(f.ID).IsEmpty() {
			return false
		}
	}
	return true
}

// answers returns the non-empty answers to a field, in response order.
func answers(f model.Field, responses []model.Response) []model.Answer {
	var out []model.Answer
	for _, r := range responses {
		if a := r.Answer(f.ID); !a.IsEmpty() {
			out = append(out, a)
		}
	}
	return out
}

// numbers returns the numeric answers to a field; other answers are skipped.
func numbers(f model.Field, responses []model.Response) []float64 {
	var out []float64
	for _, a := range answers(f, responses) {
		if n, ok := a.Float(); ok {
			out = append(out, n)
		}
	}
	return out
}

// round is half-up rounding, so that 2.5 and -2.5 go to 3 and -2.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

func round1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return round(100 * float64(n) / float64(total))
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
