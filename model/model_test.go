package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Answer
	}{
		{"null", `null`, Answer{}},
		{"text", `"hello"`, Text("hello")},
		{"number", `4`, Number(4)},
		{"choices", `["a", "b"]`, Choices("a", "b")},
		{"numeric choices", `[1, "b"]`, Choices("1", "b")},
		{"empty choices", `[]`, Answer{Kind: ChoicesAnswer, Choices: []string{}}},
		{"bool", `true`, Text("true")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Answer
			require.NoError(t, json.Unmarshal([]byte(tt.json), &a))
			assert.Equal(t, tt.want, a)
		})
	}

	var a Answer
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &a))
}

func TestAnswerIsEmpty(t *testing.T) {
	assert.True(t, Answer{}.IsEmpty())
	assert.True(t, Text("").IsEmpty())
	assert.True(t, Text("   ").IsEmpty())
	assert.True(t, Choices().IsEmpty())
	assert.False(t, Number(0).IsEmpty())
	assert.False(t, Text("x").IsEmpty())
	assert.False(t, Choices("x").IsEmpty())
}

func TestAnswerFloat(t *testing.T) {
	n, ok := Number(3.5).Float()
	assert.True(t, ok)
	assert.Equal(t, 3.5, n)

	n, ok = Text(" 4 ").Float()
	assert.True(t, ok)
	assert.Equal(t, 4.0, n)

	_, ok = Text("four").Float()
	assert.False(t, ok)

	_, ok = Choices("1").Float()
	assert.False(t, ok)
}

func TestAnswersJustificationRoundTrip(t *testing.T) {
	raw := `{"rating": 2, "rating_justification": "too slow", "note_justification": "orphan", "name": "Ana"}`

	var as Answers
	require.NoError(t, json.Unmarshal([]byte(raw), &as))

	assert.Equal(t, Rating(2, "too slow"), as["rating"])
	assert.Equal(t, Text("orphan"), as["note_justification"])
	assert.Equal(t, Text("Ana"), as["name"])
	assert.Len(t, as, 3)

	out, err := json.Marshal(as)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rating": 2, "rating_justification": "too slow", "note_justification": "orphan", "name": "Ana"}`, string(out))
}

func TestAnswersJustificationOnTextRating(t *testing.T) {
	var as Answers
	require.NoError(t, json.Unmarshal([]byte(`{
		"stars": "2", "stars_justification": "slow delivery",
		"name": "Ana", "name_justification": "kept",
		"blank": " ", "blank_justification": "kept too"
	}`), &as))

	assert.Equal(t, Rating(2, "slow delivery"), as["stars"])
	assert.NotContains(t, as, "stars_justification")
	assert.Equal(t, Text("Ana"), as["name"])
	assert.Equal(t, Text("kept"), as["name_justification"])
	assert.Equal(t, Text("kept too"), as["blank_justification"])
}

func TestAnswersCanonicalIgnoresKeyOrder(t *testing.T) {
	var a, b Answers
	require.NoError(t, json.Unmarshal([]byte(`{"x": 1, "y": ["p", "q"]}`), &a))
	require.NoError(t, json.Unmarshal([]byte(`{ "y": ["p","q"], "x": 1 }`), &b))

	ca, err := a.Canonical()
	require.NoError(t, err)
	cb, err := b.Canonical()
	require.NoError(t, err)
	assert.Equal(t, ca, cb)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "customer-satisfaction-2024", Slugify("  Customer Satisfaction: 2024! "))
	assert.Equal(t, "a-b", Slugify("a_b"))
	assert.True(t, ValidSlug("customer-satisfaction-2024"))
	assert.False(t, ValidSlug("Customer"))
	assert.False(t, ValidSlug("a--b"))
	assert.False(t, ValidSlug(""))
}

func TestNormalize(t *testing.T) {
	s := Survey{
		Title: "Team Feedback",
		Fields: []Field{
			{Type: ShortText, Label: "Your name"},
			{Type: ShortText, Label: "Your name?"},
			{ID: "your_name__1", Type: ShortText, Label: "taken"},
			{Type: Divider, SectionTitle: "About us", Required: true},
		},
	}
	s.Normalize()

	assert.Equal(t, "team-feedback", s.ID)
	assert.Equal(t, "your_name", s.Fields[0].ID)
	assert.Equal(t, "your_name__2", s.Fields[1].ID)
	assert.Equal(t, "about_us", s.Fields[3].ID)
	assert.False(t, s.Fields[3].Required)
	assert.NoError(t, s.Check())
}

func TestCheck(t *testing.T) {
	five, one := 5, 1
	valid := func() Survey {
		return Survey{ID: "s", Title: "S", Fields: []Field{
			{ID: "a", Type: SingleSelect, Options: []string{"x"}},
			{ID: "b", Type: StarRating},
		}}
	}

	tests := []struct {
		name   string
		mutate func(*Survey)
	}{
		{"bad slug", func(s *Survey) { s.ID = "Not A Slug" }},
		{"no title", func(s *Survey) { s.Title = " " }},
		{"duplicate id", func(s *Survey) { s.Fields[1].ID = "a" }},
		{"unknown type", func(s *Survey) { s.Fields[1].Type = "slider" }},
		{"no options", func(s *Survey) { s.Fields[0].Options = nil }},
		{"required divider", func(s *Survey) { s.Fields[1] = Field{ID: "d", Type: Divider, Required: true} }},
		{"inverted bounds", func(s *Survey) { s.Fields[1].Min, s.Fields[1].Max = &five, &one }},
		{"reserved suffix", func(s *Survey) { s.Fields[1].ID = "b_justification" }},
	}

	require.NoError(t, valid().Check())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Check(), ErrInvalid)
		})
	}
}

func TestPartition(t *testing.T) {
	fields := []Field{
		{ID: "a", Type: ShortText},
		{ID: "d1", Type: Divider, Label: "Service"},
		{ID: "b", Type: StarRating},
		{ID: "c", Type: LongText},
		{ID: "d2", Type: Divider, SectionTitle: "Empty"},
		{ID: "d3", Type: Divider, Label: "Wrap up"},
		{ID: "e", Type: Email},
	}

	sections := Partition(fields)
	require.Len(t, sections, 3)

	assert.Equal(t, DefaultSectionTitle, sections[0].Title)
	assert.Nil(t, sections[0].Divider)
	assert.Equal(t, "a", sections[0].Fields[0].ID)

	assert.Equal(t, "Service", sections[1].Title)
	assert.Equal(t, "d1", sections[1].Divider.ID)
	assert.Len(t, sections[1].Fields, 2)

	assert.Equal(t, "Wrap up", sections[2].Title)
	assert.Equal(t, "d3", sections[2].Divider.ID)
}

func TestPartitionRoundTrip(t *testing.T) {
	fields := []Field{
		{ID: "d0", Type: Divider, Label: "Start"},
		{ID: "a", Type: ShortText},
		{ID: "b", Type: ShortText},
		{ID: "d1", Type: Divider, Label: "Next"},
		{ID: "c", Type: Likert, Options: []string{"x"}},
	}
	assert.Equal(t, fields, Flatten(Partition(fields)))

	leading := fields[1:]
	assert.Equal(t, leading, Flatten(Partition(leading)))

	assert.Empty(t, Partition(nil))
	assert.Empty(t, Partition([]Field{{ID: "d", Type: Divider}}))
}
