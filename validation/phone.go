package validation

import (
	"regexp"
	"strings"

	"github.com/mbolis/survey-studio/model"
)

// DefaultCountry is used when a phone field names no country, or an unknown
// one.
const DefaultCountry = "BR"

// PhoneMask is the input mask shown by the phone widget and the pattern
// that accepts it.
type PhoneMask struct {
	Country string
	Mask    string
	Pattern *regexp.Regexp
}

var phoneMasks = map[string]PhoneMask{
	"BR": {"BR", "(99) 99999-9999", regexp.MustCompile(`^\(\d{2}\) \d{4,5}-\d{4}$`)},
	"US": {"US", "(999) 999-9999", regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)},
	"PT": {"PT", "999 999 999", regexp.MustCompile(`^\d{3} \d{3} \d{3}$`)},
	"GB": {"GB", "99999 999999", regexp.MustCompile(`^\d{5} \d{6}$`)},
	"AR": {"AR", "(99) 9999-9999", regexp.MustCompile(`^\(\d{2,4}\) \d{3,4}-\d{4}$`)},
}

// Mask returns the phone mask of a country.
func Mask(country string) PhoneMask {
	if m, ok := phoneMasks[strings.ToUpper(country)]; ok {
		return m
	}
	return phoneMasks[DefaultCountry]
}

func phoneMask(f model.Field) *regexp.Regexp {
	country := ""
	if f.Validation != nil {
		country = f.Validation.Country
	}
	return Mask(country).Pattern
}
