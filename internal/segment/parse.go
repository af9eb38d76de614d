package segment

import (
	"regexp"
	"strings"
)

// postalPatterns are tried in order and the first match wins. Several of the
// later entries overlap earlier ones; the order decides which code is picked.
var postalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{5}(?:-\d{4})?)\b`),                 // US ZIP, ZIP+4
	regexp.MustCompile(`\b([A-Z]\d[A-Z] ?\d[A-Z]\d)\b`),          // CA
	regexp.MustCompile(`\b([A-Z]{1,2}\d[A-Z\d]? ?\d[A-Z]{2})\b`), // UK
	regexp.MustCompile(`\b([A-Z]\d{2} ?[A-Z]\d{3})\b`),           // IE
	regexp.MustCompile(`\b(\d{4} ?[A-Z]{2})\b`),                  // NL
	regexp.MustCompile(`\b([A-Z]\d{4}[A-Z]{3})\b`),               // AR
	regexp.MustCompile(`\b(JM[A-Z]{3}\s?\d{2})\b`),               // JM
	regexp.MustCompile(`\b(BB\d{5})\b`),                          // BB
	regexp.MustCompile(`\b(HT\d{4})\b`),                          // HT
	regexp.MustCompile(`\b(AD\d{3})\b`),                          // AD
	regexp.MustCompile(`\b(M[TA][A-Z]\s?\d{4})\b`),               // MT
	regexp.MustCompile(`\b(AZ\s?\d{4})\b`),                       // AZ
	regexp.MustCompile(`\b(MD-\d{4})\b`),                         // MD
	regexp.MustCompile(`\b(\d{4}-\d{3})\b`),                      // PT
	regexp.MustCompile(`\b(\d{5}-\d{3})\b`),                      // BR
	regexp.MustCompile(`\b(\d{3}-\d{4})\b`),                      // JP
	regexp.MustCompile(`\b(\d{2}-\d{3})\b`),                      // PL
	regexp.MustCompile(`\b(\d{3}\s?\d{2})\b`),                    // CZ
	regexp.MustCompile(`\b(\d{5}-?\d{5})\b`),                     // IR
	regexp.MustCompile(`\b(\d{3}\s?\d{2})\b`),                    // SK
	regexp.MustCompile(`\b(\d{3}\s?\d{2})\b`),                    // SE, GR, TW
	regexp.MustCompile(`\b(\d{5})\b`),                            // KR
	regexp.MustCompile(`\b(\d{5})\b`),                            // DE, FR, IT, ES, MX
	regexp.MustCompile(`\b(\d{6})\b`),                            // IN, CN, RU, ...
	regexp.MustCompile(`\b(\d{7})\b`),                            // CL
	regexp.MustCompile(`\b(\d{4})\b`),                            // AU, ZA, CH
	regexp.MustCompile(`\b(\d{3})\b`),                            // IS
	regexp.MustCompile(`\b(\d{3,10}(?:[-\s]\d{3,10})*)\b`),       // anything else
}

// PostalCode returns the first postal code found in address, or "".
func PostalCode(address string) string {
	if address == "" {
		return ""
	}
	for _, re := range postalPatterns {
		if m := re.FindStringSubmatch(address); m != nil {
			return m[1]
		}
	}
	return ""
}

// ParseAddress splits address into street, city and postal code. City is
// always empty: the maps address format does not mark it reliably.
func ParseAddress(address string) (street, city, zip string) {
	if address == "" {
		return "", "", ""
	}
	zip = PostalCode(address)
	street = address
	if zip != "" {
		street = strings.ReplaceAll(street, zip, "")
	}
	return strings.Trim(street, ", \t\n"), "", zip
}

// SplitName splits a business title on its first space.
func SplitName(title string) (first, last string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ""
	}
	first, last, _ = strings.Cut(title, " ")
	return strings.TrimSpace(first), strings.TrimSpace(last)
}
