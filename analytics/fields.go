package analytics

import (
	"sort"
	"strconv"

	"github.com/mbolis/survey-studio/model"
)

// Count is one bucket of a breakdown chart.
type Count struct {
	Name       string `json:"name"`
	Value      int    `json:"value"`
	Percentage int    `json:"percentage"`
}

type NumericStats struct {
	Average      float64 `json:"average"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Count        int     `json:"count"`
	Median       float64 `json:"median"`
	Distribution []Count `json:"distribution"`
}

type RankScore struct {
	Name            string  `json:"name"`
	AveragePosition float64 `json:"averagePosition"`
	Score           int     `json:"score"`
	Count           int     `json:"count"`
}

// tally counts names keeping the order in which they first appeared.
type tally struct {
	names  []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: map[string]int{}}
}

func (t *tally) add(name string) {
	if _, ok := t.counts[name]; !ok {
		t.names = append(t.names, name)
	}
	t.counts[name]++
}

func (t *tally) byCount(total int) []Count {
	out := make([]Count, 0, len(t.names))
	for _, name := range t.names {
		n := t.counts[name]
		out = append(out, Count{Name: name, Value: n, Percentage: percent(n, total)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})
	return out
}

// Categorical groups single-choice answers by value, most frequent first.
// Ties keep the order in which values first appeared.
func Categorical(f model.Field, responses []model.Response) []Count {
	all := answers(f, responses)
	t := newTally()
	for _, a := range all {
		t.add(a.String())
	}
	return t.byCount(len(all))
}

// MultiSelect counts each selected option once per response. Percentages
// are relative to the number of responses, so they may sum above 100.
func MultiSelect(f model.Field, responses []model.Response) []Count {
	all := answers(f, responses)
	t := newTally()
	for _, a := range all {
		for _, choice := range a.Strings() {
			t.add(choice)
		}
	}
	return t.byCount(len(all))
}

// Numeric describes the numeric answers of a rating or scale field, nil
// when there are none.
func Numeric(f model.Field, responses []model.Response) *NumericStats {
	xs := numbers(f, responses)
	if len(xs) == 0 {
		return nil
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	stats := &NumericStats{
		Average: mean(xs),
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
		Count:   len(xs),
		Median:  median(sorted),
	}

	counts := map[float64]int{}
	var values []float64
	for _, x := range sorted {
		if counts[x] == 0 {
			values = append(values, x)
		}
		counts[x]++
	}
	for _, v := range values {
		stats.Distribution = append(stats.Distribution, Count{
			Name:       strconv.FormatFloat(v, 'f', -1, 64),
			Value:      counts[v],
			Percentage: percent(counts[v], len(xs)),
		})
	}
	return stats
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Likert returns one bucket per declared option, in option order, zero
// counts included. Answers matching no option are dropped; percentages are
// relative to the recognized answers.
func Likert(f model.Field, responses []model.Response) []Count {
	index := make(map[string]int, len(f.Options))
	out := make([]Count, len(f.Options))
	for i, opt := range f.Options {
		out[i].Name = opt
		if _, dup := index[opt]; !dup {
			index[opt] = i
		}
	}

	total := 0
	for _, a := range answers(f, responses) {
		if i, ok := index[a.String()]; ok {
			out[i].Value++
			total++
		}
	}
	for i := range out {
		out[i].Percentage = percent(out[i].Value, total)
	}
	return out
}

// Ranking scores each option by the average 1-based position it was given.
// An option nobody ranked sits at the last position. Best ranked first.
func Ranking(f model.Field, responses []model.Response) []RankScore {
	positions := make(map[string][]int, len(f.Options))
	for _, a := range answers(f, responses) {
		for i, name := range a.Strings() {
			positions[name] = append(positions[name], i+1)
		}
	}

	n := len(f.Options)
	out := make([]RankScore, 0, n)
	for _, opt := range f.Options {
		ps := positions[opt]
		avg := float64(n)
		if len(ps) > 0 {
			sum := 0
			for _, p := range ps {
				sum += p
			}
			avg = float64(sum) / float64(len(ps))
		}
		out = append(out, RankScore{
			Name:            opt,
			AveragePosition: avg,
			Score:           round((float64(n) - avg + 1) * 10),
			Count:           len(ps),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AveragePosition < out[j].AveragePosition
	})
	return out
}

// Texts lists the non-empty answers of a free-form field.
func Texts(f model.Field, responses []model.Response) []string {
	var out []string
	for _, a := range answers(f, responses) {
		out = append(out, a.String())
	}
	return out
}
