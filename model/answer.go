package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// JustificationSuffix is appended to a field id to form the wire key of the
// free-text justification paired with a rating.
const JustificationSuffix = "_justification"

type AnswerKind int

const (
	NoAnswer AnswerKind = iota
	TextAnswer
	NumberAnswer
	ChoicesAnswer
)

// Answer is one value of a response. Kind tells which of the other fields
// is meaningful; Justification only travels with number answers.
type Answer struct {
	Kind          AnswerKind
	Text          string
	Number        float64
	Choices       []string
	Justification string
}

func Text(s string) Answer {
	return Answer{Kind: TextAnswer, Text: s}
}

func Number(n float64) Answer {
	return Answer{Kind: NumberAnswer, Number: n}
}

func Choices(choices ...string) Answer {
	return Answer{Kind: ChoicesAnswer, Choices: choices}
}

// Rating is a number answer with its justification.
func Rating(n float64, justification string) Answer {
	return Answer{Kind: NumberAnswer, Number: n, Justification: justification}
}

func (a Answer) IsEmpty() bool {
	switch a.Kind {
	case TextAnswer:
		return strings.TrimSpace(a.Text) == ""
	case NumberAnswer:
		return false
	case ChoicesAnswer:
		return len(a.Choices) == 0
	}
	return true
}

// Float returns the numeric value of number answers and of text answers
// holding a number.
func (a Answer) Float() (float64, bool) {
	switch a.Kind {
	case NumberAnswer:
		return a.Number, true
	case TextAnswer:
		n, err := strconv.ParseFloat(strings.TrimSpace(a.Text), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// String is the display form of the answer; choices are joined with "; ".
func (a Answer) String() string {
	switch a.Kind {
	case TextAnswer:
		return a.Text
	case NumberAnswer:
		return formatNumber(a.Number)
	case ChoicesAnswer:
		return strings.Join(a.Choices, "; ")
	}
	return ""
}

// Strings returns the answer as a list: choices as they are, any other
// non-empty answer as a single element.
func (a Answer) Strings() []string {
	if a.Kind == ChoicesAnswer {
		return a.Choices
	}
	if a.IsEmpty() {
		return nil
	}
	return []string{a.String()}
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case TextAnswer:
		return json.Marshal(a.Text)
	case NumberAnswer:
		return json.Marshal(a.Number)
	case ChoicesAnswer:
		if a.Choices == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Choices)
	}
	return []byte("null"), nil
}

func (a *Answer) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*a = Answer{}
	if len(b) == 0 {
		return nil
	}

	switch b[0] {
	case 'n':
		return nil
	case '"':
		a.Kind = TextAnswer
		return json.Unmarshal(b, &a.Text)
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*a = Text(strconv.FormatBool(v))
		return nil
	case '[':
		var items []any
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		a.Kind = ChoicesAnswer
		a.Choices = make([]string, 0, len(items))
		for _, item := range items {
			switch v := item.(type) {
			case string:
				a.Choices = append(a.Choices, v)
			case float64:
				a.Choices = append(a.Choices, formatNumber(v))
			case nil:
			default:
				return fmt.Errorf("unsupported choice value %v", v)
			}
		}
		return nil
	case '{':
		return fmt.Errorf("unsupported answer value %s", b)
	}

	a.Kind = NumberAnswer
	return json.Unmarshal(b, &a.Number)
}

// Answers maps field ids to answers. On the wire a justification is a
// sibling "<id>_justification" key; in memory it lives on the answer.
type Answers map[string]Answer

func (as Answers) MarshalJSON() ([]byte, error) {
	flat := make(map[string]Answer, len(as))
	for id, a := range as {
		if a.Justification != "" {
			flat[id+JustificationSuffix] = Text(a.Justification)
			a.Justification = ""
		}
		flat[id] = a
	}
	return json.Marshal(flat)
}

func (as *Answers) UnmarshalJSON(b []byte) error {
	var flat map[string]Answer
	if err := json.Unmarshal(b, &flat); err != nil {
		return err
	}

	out := make(Answers, len(flat))
	for id, a := range flat {
		out[id] = a
	}
	for id, a := range flat {
		base, ok := strings.CutSuffix(id, JustificationSuffix)
		if !ok || base == "" {
			continue
		}
		rating, ok := out[base]
		if !ok || rating.IsEmpty() {
			continue
		}
		n, ok := rating.Float()
		if !ok {
			continue
		}
		out[base] = Rating(n, a.Text)
		delete(out, id)
	}
	*as = out
	return nil
}

// Canonical is a stable serialization used to compare answer sets.
func (as Answers) Canonical() ([]byte, error) {
	return json.Marshal(as)
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
