package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var ErrInvalid = errors.New("invalid survey")

type Survey struct {
	ID          string       `json:"id"`
	Version     int          `json:"version,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Logo        string       `json:"logo,omitempty"`
	Fields      []Field      `json:"fields"`
	IsActive    bool         `json:"isActive"`
	SuccessPage *SuccessPage `json:"successPage,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// SuccessPage is shown to respondents after a submission.
type SuccessPage struct {
	Title       string `json:"title,omitempty"`
	Message     string `json:"message,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

func (s Survey) Field(id string) (Field, bool) {
	for _, f := range s.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Questions returns the fields without dividers, in order.
func (s Survey) Questions() []Field {
	return Questions(s.Fields)
}

func Questions(fields []Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if !f.IsDivider() {
			out = append(out, f)
		}
	}
	return out
}

var (
	reNoIdent = regexp.MustCompile(`\W+`)
	reSlug    = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Slugify turns free text into a URL-safe survey id.
func Slugify(s string) string {
	return identifier(s, "-")
}

func identifier(s, sep string) string {
	s = strings.ToLower(s)
	s = reNoIdent.ReplaceAllLiteralString(s, " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), sep)
}

func ValidSlug(s string) bool {
	return reSlug.MatchString(s)
}

// Normalize fills in missing ids and clears flags that do not apply.
// Field ids are derived from labels, numbered when they collide.
func (s *Survey) Normalize() {
	if s.ID == "" {
		s.ID = Slugify(s.Title)
	}

	taken := map[string]bool{}
	for _, f := range s.Fields {
		if f.ID != "" {
			taken[f.ID] = true
		}
	}
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.IsDivider() {
			f.Required = false
		}
		if f.ID != "" {
			continue
		}

		base := identifier(f.Label, "_")
		if base == "" {
			base = identifier(f.Title(), "_")
		}
		if base == "" {
			base = string(f.Type)
		}
		name := base
		for n := 1; taken[name]; n++ {
			name = fmt.Sprintf("%s__%d", base, n)
		}
		taken[name] = true
		f.ID = name
	}
}

// Check reports the first structural problem of the survey definition.
func (s Survey) Check() error {
	if !ValidSlug(s.ID) {
		return fmt.Errorf("%w: id %q is not a URL-safe slug", ErrInvalid, s.ID)
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalid)
	}

	seen := make(map[string]bool, len(s.Fields))
	for i, f := range s.Fields {
		switch {
		case f.ID == "":
			return fmt.Errorf("%w: field %d has no id", ErrInvalid, i)
		case seen[f.ID]:
			return fmt.Errorf("%w: duplicate field id %q", ErrInvalid, f.ID)
		case !f.Type.Valid():
			return fmt.Errorf("%w: field %q has unknown type %q", ErrInvalid, f.ID, f.Type)
		case f.IsDivider() && f.Required:
			return fmt.Errorf("%w: divider %q cannot be required", ErrInvalid, f.ID)
		case f.Type.HasOptions() && len(f.Options) == 0:
			return fmt.Errorf("%w: field %q needs options", ErrInvalid, f.ID)
		case strings.HasSuffix(f.ID, JustificationSuffix):
			return fmt.Errorf("%w: field id %q uses a reserved suffix", ErrInvalid, f.ID)
		}
		if min, max := f.Bounds(); f.Type.IsNumeric() && min > max {
			return fmt.Errorf("%w: field %q has min %d above max %d", ErrInvalid, f.ID, min, max)
		}
		seen[f.ID] = true
	}
	return nil
}
