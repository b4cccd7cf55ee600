package validation

import (
	"strings"

	"github.com/maktab-io/maktab/core"
)

const countryCode = "98"

// PhoneVariants returns the representations under which a phone number may
// already be stored: the raw input, digits-only, the leading-zero national
// form and the country-code-prefixed forms. Duplicate checks match against
// all of them so "0912 345 6789" collides with "+989123456789".
func PhoneVariants(phone string) []string {
	raw := core.CleanString(phone)
	if raw == "" {
		return nil
	}
	digits := core.DigitsOnly(raw)

	// strip country code / trunk zero down to the bare national number
	national := digits
	switch {
	case strings.HasPrefix(national, "00"+countryCode):
		national = national[2+len(countryCode):]
	case strings.HasPrefix(national, countryCode) && len(national) > 10:
		national = national[len(countryCode):]
	}
	national = strings.TrimPrefix(national, "0")

	variants := []string{
		raw,
		digits,
		national,
		"0" + national,
		countryCode + national,
		"+" + countryCode + national,
		"00" + countryCode + national,
	}

	seen := make(map[string]struct{}, len(variants))
	uniq := variants[:0]
	for _, v := range variants {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		uniq = append(uniq, v)
	}
	return uniq
}
