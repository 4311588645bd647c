package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/survey-studio/model"
)

func responses(answers ...model.Answers) []model.Response {
	out := make([]model.Response, len(answers))
	for i, a := range answers {
		out[i] = model.Response{ID: fmt.Sprint(i + 1), SurveyID: "s", Answers: a}
	}
	return out
}

func stars(id string, values ...float64) []model.Response {
	as := make([]model.Answers, len(values))
	for i, v := range values {
		as[i] = model.Answers{id: model.Number(v)}
	}
	return responses(as...)
}

func TestCompletionRate(t *testing.T) {
	fields := []model.Field{
		{ID: "A", Type: model.ShortText, Required: true},
		{ID: "B", Type: model.ShortText, Required: true},
		{ID: "C", Type: model.ShortText},
	}
	rs := responses(
		model.Answers{"A": model.Text("x"), "B": model.Text("y")},
		model.Answers{"A": model.Text("x"), "C": model.Text("z")},
		model.Answers{},
	)

	s := Summarize(fields, rs)
	assert.Equal(t, 3, s.TotalResponses)
	assert.Equal(t, 33, s.CompletionRate)
	assert.Nil(t, s.AverageRating)
	assert.Nil(t, s.SatisfactionScore)
}

func TestCompletionRateDefaults(t *testing.T) {
	optional := []model.Field{{ID: "A", Type: model.ShortText}}
	assert.Equal(t, 100, Summarize(optional, responses(model.Answers{})).CompletionRate)

	required := []model.Field{{ID: "A", Type: model.ShortText, Required: true}}
	assert.Equal(t, 100, Summarize(required, nil).CompletionRate)
}

func TestSatisfactionScore(t *testing.T) {
	fields := []model.Field{
		{ID: "q1", Type: model.StarRating},
		{ID: "q2", Type: model.StarRating},
		{ID: "nps", Type: model.NumericScale},
	}

	tests := []struct {
		name  string
		rs    []model.Response
		avg   float64
		score int
	}{
		{"all ones", stars("q1", 1, 1, 1), 1, 0},
		{"all fives", stars("q1", 5, 5), 5, 100},
		{"mixed", stars("q1", 5, 5, 3, 1), 3.5, 63},
		{"pooled across fields", responses(
			model.Answers{"q1": model.Number(4), "q2": model.Number(2), "nps": model.Number(10)},
			model.Answers{"q2": model.Number(3)},
		), 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(fields, tt.rs)
			require.NotNil(t, s.AverageRating)
			require.NotNil(t, s.SatisfactionScore)
			assert.InDelta(t, tt.avg, *s.AverageRating, 1e-9)
			assert.Equal(t, tt.score, *s.SatisfactionScore)
		})
	}
}

func TestSatisfactionScoreInRange(t *testing.T) {
	fields := []model.Field{{ID: "q", Type: model.StarRating}}
	for a := 1.0; a <= 5; a++ {
		for b := 1.0; b <= 5; b++ {
			score := *Summarize(fields, stars("q", a, b)).SatisfactionScore
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		}
	}
}

func TestStarDistribution(t *testing.T) {
	f := model.Field{ID: "q", Type: model.StarRating}
	stats := Numeric(f, stars("q", 5, 5, 3, 1))
	require.NotNil(t, stats)

	assert.Equal(t, 3.5, stats.Average)
	assert.Equal(t, 1.0, stats.Min)
	assert.Equal(t, 5.0, stats.Max)
	assert.Equal(t, 4, stats.Count)
	assert.Equal(t, 4.0, stats.Median)
	assert.Equal(t, []Count{
		{Name: "1", Value: 1, Percentage: 25},
		{Name: "3", Value: 1, Percentage: 25},
		{Name: "5", Value: 2, Percentage: 50},
	}, stats.Distribution)
}

func TestNumericOddMedianAndStrings(t *testing.T) {
	f := model.Field{ID: "q", Type: model.NumericScale}
	rs := responses(
		model.Answers{"q": model.Number(7)},
		model.Answers{"q": model.Text("2")},
		model.Answers{"q": model.Text("n/a")},
		model.Answers{"q": model.Number(9)},
	)
	stats := Numeric(f, rs)
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 7.0, stats.Median)

	assert.Nil(t, Numeric(f, nil))
}

func TestCategorical(t *testing.T) {
	f := model.Field{ID: "c", Type: model.SingleSelect, Options: []string{"Red", "Green", "Blue"}}
	rs := responses(
		model.Answers{"c": model.Text("Green")},
		model.Answers{"c": model.Text("Red")},
		model.Answers{"c": model.Text("Blue")},
		model.Answers{"c": model.Text("Red")},
		model.Answers{"c": model.Text("")},
		model.Answers{},
	)

	got := Categorical(f, rs)
	assert.Equal(t, []Count{
		{Name: "Red", Value: 2, Percentage: 50},
		{Name: "Green", Value: 1, Percentage: 25},
		{Name: "Blue", Value: 1, Percentage: 25},
	}, got)

	assert.Empty(t, Categorical(f, nil))
}

func TestCategoricalPercentagesSumTo100(t *testing.T) {
	f := model.Field{ID: "c", Type: model.Dropdown}
	rs := responses(
		model.Answers{"c": model.Text("a")},
		model.Answers{"c": model.Text("b")},
		model.Answers{"c": model.Text("c")},
	)
	sum := 0
	for _, c := range Categorical(f, rs) {
		sum += c.Percentage
	}
	assert.InDelta(t, 100, sum, 2)
}

func TestMultiSelect(t *testing.T) {
	f := model.Field{ID: "m", Type: model.MultiSelect, Options: []string{"a", "b", "c"}}
	rs := responses(
		model.Answers{"m": model.Choices("a", "b")},
		model.Answers{"m": model.Choices("b")},
		model.Answers{"m": model.Choices()},
		model.Answers{"m": model.Choices("b", "c")},
		model.Answers{"m": model.Choices("a", "b", "c")},
	)

	assert.Equal(t, []Count{
		{Name: "b", Value: 4, Percentage: 100},
		{Name: "a", Value: 2, Percentage: 50},
		{Name: "c", Value: 2, Percentage: 50},
	}, MultiSelect(f, rs))
}

func TestLikert(t *testing.T) {
	f := model.Field{ID: "l", Type: model.Likert, Options: []string{"Disagree", "Neutral", "Agree"}}
	rs := responses(
		model.Answers{"l": model.Text("Agree")},
		model.Answers{"l": model.Text("Agree")},
		model.Answers{"l": model.Text("Neutral")},
		model.Answers{"l": model.Text("Maybe")},
	)

	assert.Equal(t, []Count{
		{Name: "Disagree", Value: 0, Percentage: 0},
		{Name: "Neutral", Value: 1, Percentage: 33},
		{Name: "Agree", Value: 2, Percentage: 67},
	}, Likert(f, rs))

	empty := Likert(f, nil)
	assert.Len(t, empty, 3)
	for _, c := range empty {
		assert.Zero(t, c.Value)
		assert.Zero(t, c.Percentage)
	}
}

func TestRanking(t *testing.T) {
	f := model.Field{ID: "r", Type: model.Ranking, Options: []string{"Price", "Quality", "Speed", "Support"}}
	rs := responses(
		model.Answers{"r": model.Choices("Quality", "Price", "Speed")},
		model.Answers{"r": model.Choices("Quality", "Speed", "Price")},
		model.Answers{"r": model.Choices("Quality", "Price")},
	)

	got := Ranking(f, rs)
	require.Len(t, got, 4)

	assert.Equal(t, "Quality", got[0].Name)
	assert.Equal(t, 1.0, got[0].AveragePosition)
	assert.Equal(t, 40, got[0].Score)
	assert.Equal(t, 3, got[0].Count)

	assert.Equal(t, "Price", got[1].Name)
	assert.InDelta(t, 7.0/3, got[1].AveragePosition, 1e-9)
	assert.Equal(t, 27, got[1].Score)

	assert.Equal(t, "Speed", got[2].Name)
	assert.Equal(t, 2.5, got[2].AveragePosition)
	assert.Equal(t, 25, got[2].Score)

	assert.Equal(t, "Support", got[3].Name)
	assert.Equal(t, 4.0, got[3].AveragePosition)
	assert.Equal(t, 10, got[3].Score)
	assert.Zero(t, got[3].Count)
}

func TestRankingNoResponses(t *testing.T) {
	f := model.Field{ID: "r", Type: model.Ranking, Options: []string{"a", "b"}}
	for _, r := range Ranking(f, nil) {
		assert.Equal(t, 2.0, r.AveragePosition)
		assert.Equal(t, 10, r.Score)
	}
}

func TestNPS(t *testing.T) {
	f := model.Field{ID: "n", Type: model.NumericScale}
	require.True(t, IsNPSField(f))

	b := NPS(f, stars("n", 10, 9, 8, 6, 0))
	require.NotNil(t, b)
	assert.Equal(t, 5, b.Total)
	assert.Equal(t, 2, b.Promoters)
	assert.Equal(t, 1, b.Passives)
	assert.Equal(t, 2, b.Detractors)
	assert.Equal(t, 40, b.PromoterPct)
	assert.Equal(t, 20, b.PassivePct)
	assert.Equal(t, 40, b.DetractorPct)
	assert.Equal(t, 0, b.Score)
	assert.Equal(t, 6.6, b.Average)

	b = NPS(f, stars("n", 10, 10, 9, 7))
	assert.Equal(t, 75, b.Score)

	assert.Nil(t, NPS(f, nil))
}

func TestIsNPSField(t *testing.T) {
	one, five := 1, 5
	assert.False(t, IsNPSField(model.Field{Type: model.StarRating}))
	assert.False(t, IsNPSField(model.Field{Type: model.NumericScale, Min: &one}))
	assert.False(t, IsNPSField(model.Field{Type: model.NumericScale, Max: &five}))
}

func TestAnalyze(t *testing.T) {
	fields := []model.Field{
		{ID: "name", Type: model.ShortText, Label: "Name"},
		{ID: "d", Type: model.Divider, Label: "Ratings"},
		{ID: "stars", Type: model.StarRating, Label: "Stars", Required: true},
		{ID: "nps", Type: model.NumericScale, Label: "Recommend"},
		{ID: "color", Type: model.SingleSelect, Options: []string{"a", "b"}},
	}
	rs := responses(
		model.Answers{"name": model.Text("Ana"), "stars": model.Number(4), "nps": model.Number(10), "color": model.Text("a")},
		model.Answers{"stars": model.Number(2), "color": model.Text("b")},
	)

	report := Analyze(fields, rs)
	assert.Equal(t, 2, report.Summary.TotalResponses)
	assert.Equal(t, 100, report.Summary.CompletionRate)
	require.Len(t, report.Fields, 4)

	assert.Equal(t, []string{"Ana"}, report.Fields[0].Texts)
	assert.Equal(t, 1, report.Fields[0].Responses)
	assert.NotNil(t, report.Fields[1].Numeric)
	assert.Nil(t, report.Fields[1].NPS)
	assert.NotNil(t, report.Fields[2].NPS)
	assert.Len(t, report.Fields[3].Categories, 2)

	empty := Analyze(fields, nil)
	assert.Equal(t, 0, empty.Summary.TotalResponses)
	assert.Nil(t, empty.Fields[1].Numeric)
	assert.Empty(t, empty.Fields[3].Categories)
}
