package contact

import "strings"

// allowedTLDs lists the top-level labels accepted on extracted email
// addresses. Second-level entries such as "co.uk" never match a single
// label and are kept for completeness of the list.
var allowedTLDs = map[string]struct{}{
	"com": {}, "org": {}, "net": {}, "edu": {}, "gov": {}, "mil": {}, "co": {}, "io": {},
	"ai": {}, "biz": {}, "info": {}, "name": {}, "mobi": {}, "pro": {}, "travel": {}, "xxx": {},
	"aero": {}, "coop": {}, "int": {}, "jobs": {}, "museum": {}, "asia": {}, "tel": {}, "cat": {},
	"post": {}, "xyz": {}, "app": {}, "blog": {}, "cloud": {}, "dev": {}, "online": {},
	"shop": {}, "site": {}, "store": {}, "tech": {}, "website": {}, "icu": {}, "art": {},
	"bar": {}, "bio": {}, "eco": {}, "law": {}, "med": {}, "now": {}, "tv": {}, "video": {},
	"wiki": {}, "zone": {}, "me": {}, "fm": {}, "am": {}, "gg": {}, "to": {}, "cc": {}, "ly": {},
	"sh": {}, "ac": {}, "live": {}, "studio": {}, "design": {}, "space": {}, "news": {},
	"money": {}, "bank": {}, "cash": {}, "club": {}, "social": {}, "email": {}, "events": {},
	"games": {}, "group": {}, "network": {}, "services": {}, "guru": {}, "expert": {},
	"agency": {}, "company": {}, "global": {}, "world": {}, "city": {}, "tools": {}, "center": {},
	"digital": {}, "express": {}, "plus": {}, "team": {}, "community": {}, "foundation": {},
	"realtor": {}, "properties": {}, "marketing": {}, "media": {}, "press": {}, "reviews": {},
	"directory": {}, "systems": {}, "solutions": {}, "computer": {}, "software": {}, "host": {},
	"security": {}, "data": {}, "careers": {}, "recruiting": {}, "school": {}, "academy": {},
	"university": {}, "college": {}, "church": {}, "charity": {}, "ngo": {}, "green": {},
	"organic": {}, "farm": {}, "health": {}, "clinic": {}, "dental": {}, "pharmacy": {},
	"hospital": {}, "vet": {}, "care": {}, "beauty": {}, "fitness": {}, "yoga": {}, "uk": {},
	"us": {}, "eu": {}, "ca": {}, "de": {}, "fr": {}, "it": {}, "es": {}, "nl": {}, "cn": {},
	"jp": {}, "in": {}, "ru": {}, "ch": {}, "se": {}, "br": {}, "au": {}, "nz": {}, "mx": {},
	"ar": {}, "za": {}, "gr": {}, "kr": {}, "sg": {}, "hk": {}, "ae": {}, "il": {}, "pl": {},
	"at": {}, "be": {}, "dk": {}, "fi": {}, "ie": {}, "no": {}, "pt": {}, "ro": {}, "sa": {},
	"tr": {}, "tw": {}, "vn": {}, "cl": {}, "id": {}, "my": {}, "ph": {}, "th": {}, "ve": {},
	"ng": {}, "eg": {}, "ma": {}, "pk": {}, "bd": {}, "lk": {}, "ke": {}, "tz": {}, "gh": {},
	"ug": {}, "zw": {}, "dz": {}, "tn": {}, "jo": {}, "qa": {}, "kw": {}, "om": {}, "lb": {},
	"cy": {}, "mt": {}, "is": {}, "lu": {}, "li": {}, "ad": {}, "mc": {}, "sm": {}, "va": {},
	"by": {}, "ua": {}, "kz": {}, "uz": {}, "az": {}, "ge": {}, "kg": {}, "tj": {}, "tm": {},
	"md": {}, "mk": {}, "al": {}, "ba": {}, "hr": {}, "rs": {}, "si": {}, "sk": {}, "cz": {},
	"hu": {}, "bg": {}, "ee": {}, "lv": {}, "lt": {}, "im": {}, "je": {}, "fo": {}, "gl": {},
	"cv": {}, "mu": {}, "mv": {}, "mw": {}, "ne": {}, "np": {}, "pg": {}, "rw": {}, "sb": {},
	"sc": {}, "sd": {}, "sl": {}, "sn": {}, "so": {}, "sr": {}, "st": {}, "sy": {}, "td": {},
	"tg": {}, "tl": {}, "tt": {}, "vu": {}, "ws": {}, "ye": {}, "zm": {}, "bt": {}, "bn": {},
	"kh": {}, "la": {}, "mn": {}, "mm": {}, "com.np": {}, "com.my": {}, "com.au": {}, "co.uk": {},
	"co.jp": {}, "co.in": {}, "co.za": {}, "co.kr": {}, "com.br": {}, "com.mx": {}, "com.es": {},
	"com.pe": {}, "com.ve": {}, "com.co": {}, "com.ar": {}, "com.uy": {}, "org.uk": {},
	"net.au": {}, "edu.au": {}, "gov.uk": {}, "ac.uk": {}, "gov.au": {}, "edu.ph": {},
	"gov.in": {}, "org.au": {}, "net.nz": {}, "edu.sg": {}, "gov.sg": {}, "co.nz": {},
	"co.th": {}, "co.id": {}, "co.il": {}, "co.ke": {}, "co.tz": {}, "co.ug": {}, "co.zw": {},
	"org.nz": {}, "org.ca": {}, "org.in": {}, "org.jp": {}, "net.ph": {}, "net.th": {},
	"edu.my": {}, "edu.pk": {}, "gov.za": {}, "gov.tr": {}, "gov.pl": {}, "gov.ro": {},
}

var forbiddenEmailPrefixes = []string{"http://www.", "https://www.", "http://", "https://"}

// ValidEmail reports whether email looks like a deliverable address. It must
// not start with a URL scheme and its last label must be an allowed TLD.
func ValidEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 || !strings.Contains(email[at:], ".") {
		return false
	}
	for _, p := range forbiddenEmailPrefixes {
		if strings.HasPrefix(email, p) {
			return false
		}
	}
	tld := email[strings.LastIndex(email, ".")+1:]
	_, ok := allowedTLDs[tld]
	return ok
}
