// Package validation decides whether a candidate answer is acceptable for a
// field. Rejections are values, not errors: they are shown next to the
// offending input and cleared as soon as the respondent edits it.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mbolis/survey-studio/model"
)

const (
	MsgRequired      = "This field is required"
	MsgEmail         = "Please enter a valid email address"
	MsgPhone         = "Please enter a valid phone number"
	MsgCurrency      = "Please enter a valid amount, e.g. R$ 1.234,56"
	MsgPostalCode    = "Please enter a valid postal code, e.g. 12345-678"
	MsgPattern       = "Invalid format"
	MsgJustification = "Please tell us the reason for this rating"
)

var (
	reEmail      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	reCurrency   = regexp.MustCompile(`^R\$ ?\d{1,3}(\.\d{3})*,\d{2}$`)
	rePostalCode = regexp.MustCompile(`^\d{5}-\d{3}$`)
)

// Errors maps field ids to the reason their answer was rejected.
type Errors map[string]string

// Field checks one answer against its field. ok is false when the answer is
// rejected, and reason says why.
func Field(f model.Field, a model.Answer) (reason string, ok bool) {
	if f.IsDivider() {
		return "", true
	}
	if a.IsEmpty() {
		if f.Required {
			return MsgRequired, false
		}
		return "", true
	}

	switch f.Type {
	case model.Email:
		if !reEmail.MatchString(a.String()) {
			return MsgEmail, false
		}
	case model.Phone:
		if !phoneMask(f).MatchString(a.String()) {
			return MsgPhone, false
		}
	case model.Currency:
		if !reCurrency.MatchString(a.String()) {
			return MsgCurrency, false
		}
	case model.PostalCode:
		if !rePostalCode.MatchString(a.String()) {
			return MsgPostalCode, false
		}
	case model.StarRating:
		if reason, ok := justification(f, a); !ok {
			return reason, false
		}
	}

	if f.Validation != nil {
		if reason, ok := rules(*f.Validation, a.String()); !ok {
			return reason, false
		}
	}
	return "", true
}

func rules(v model.Validation, s string) (string, bool) {
	n := utf8.RuneCountInString(s)
	if v.MinLength != nil && n < *v.MinLength {
		return fmt.Sprintf("Must be at least %d characters", *v.MinLength), false
	}
	if v.MaxLength != nil && n > *v.MaxLength {
		return fmt.Sprintf("Must be at most %d characters", *v.MaxLength), false
	}
	if v.Pattern != "" {
		re, err := regexp.Compile(v.Pattern)
		if err == nil && !re.MatchString(s) {
			if v.Message != "" {
				return v.Message, false
			}
			return MsgPattern, false
		}
	}
	return "", true
}

func justification(f model.Field, a model.Answer) (string, bool) {
	if f.Validation == nil || f.Validation.JustifyBelow <= 0 {
		return "", true
	}
	n, ok := a.Float()
	if !ok || n >= float64(f.Validation.JustifyBelow) {
		return "", true
	}
	if strings.TrimSpace(a.Justification) == "" {
		return MsgJustification, false
	}
	return "", true
}

// Survey checks every field of a survey and returns the rejected ones.
// Answers to unknown field ids are ignored.
func Survey(fields []model.Field, answers model.Answers) Errors {
	errs := Errors{}
	for _, f := range fields {
		if reason, ok := Field(f, answers[f.ID]); !ok {
			errs[f.ID] = reason
		}
	}
	return errs
}

// Clear drops the error of a field that was just edited.
func (errs Errors) Clear(fieldID string) {
	delete(errs, fieldID)
}
