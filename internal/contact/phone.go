package contact

import (
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const minPhoneDigits = 7

// CleanPhone keeps the digits of raw and a single leading plus sign.
func CleanPhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone formats raw as E.164 using region as the default region.
//
// On success the second value is the numeric calling code of the parsed
// number. When the number cannot be parsed or fails validation the cleaned
// digits are returned, prefixed with the region's calling code unless they
// already start with "+", together with region. Inputs with fewer than seven
// digits yield ("", region).
func NormalizePhone(raw, region string) (string, string) {
	clean := CleanPhone(raw)
	if len(strings.TrimPrefix(clean, "+")) < minPhoneDigits {
		return "", region
	}

	num, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err == nil && phonenumbers.IsValidNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164), strconv.Itoa(int(num.GetCountryCode()))
	}

	if !strings.HasPrefix(clean, "+") {
		if cc := phonenumbers.GetCountryCodeForRegion(strings.ToUpper(region)); cc > 0 {
			clean = "+" + strconv.Itoa(cc) + clean
		}
	}
	return clean, region
}

// IsMobile classifies an already formatted number. known is false when the
// number cannot be parsed at all.
func IsMobile(formatted string) (mobile bool, known bool) {
	num, err := phonenumbers.Parse(formatted, "")
	if err != nil {
		return false, false
	}
	switch phonenumbers.GetNumberType(num) {
	case phonenumbers.MOBILE, phonenumbers.FIXED_LINE_OR_MOBILE:
		return true, true
	}
	return false, true
}
