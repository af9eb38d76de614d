package locale

import "strings"

// countries maps lower-cased country names and common aliases to ISO 3166-1
// alpha-2 codes.
var countries = map[string]string{
	"nepal": "NP",
	"us": "US",
	"usa": "US",
	"u.s.": "US",
	"u.s.a.": "US",
	"united states": "US",
	"united states of america": "US",
	"uk": "GB",
	"germany": "DE",
	"india": "IN",
	"france": "FR",
	"spain": "ES",
	"czechia": "CZ",
	"drc": "CD",
	"prc": "CN",
	"republic of korea": "KR",
	"north macedonia": "MK",
	"eswatini": "SZ",
	"cabo verde": "CV",
	"burma": "MM",
	"timor-leste": "TL",
	"vatican city": "VA",
	"afghanistan": "AF",
	"albania": "AL",
	"algeria": "DZ",
	"american samoa": "AS",
	"andorra": "AD",
	"angola": "AO",
	"anguilla": "AI",
	"antarctica": "AQ",
	"antigua and barbuda": "AG",
	"argentina": "AR",
	"armenia": "AM",
	"aruba": "AW",
	"australia": "AU",
	"austria": "AT",
	"azerbaijan": "AZ",
	"bahamas": "BS",
	"bahrain": "BH",
	"bangladesh": "BD",
	"barbados": "BB",
	"belarus": "BY",
	"belgium": "BE",
	"belize": "BZ",
	"benin": "BJ",
	"bermuda": "BM",
	"bhutan": "BT",
	"bolivia": "BO",
	"bosnia and herzegovina": "BA",
	"botswana": "BW",
	"brazil": "BR",
	"british indian ocean territory": "IO",
	"british virgin islands": "VG",
	"brunei": "BN",
	"bulgaria": "BG",
	"burkina faso": "BF",
	"burundi": "BI",
	"cambodia": "KH",
	"cameroon": "CM",
	"canada": "CA",
	"cape verde": "CV",
	"cayman islands": "KY",
	"central african republic": "CF",
	"chad": "TD",
	"chile": "CL",
	"china": "CN",
	"christmas island": "CX",
	"cocos islands": "CC",
	"colombia": "CO",
	"comoros": "KM",
	"cook islands": "CK",
	"costa rica": "CR",
	"croatia": "HR",
	"cuba": "CU",
	"curacao": "CW",
	"cyprus": "CY",
	"czech republic": "CZ",
	"democratic republic of the congo": "CD",
	"denmark": "DK",
	"djibouti": "DJ",
	"dominica": "DM",
	"dominican republic": "DO",
	"east timor": "TL",
	"ecuador": "EC",
	"egypt": "EG",
	"el salvador": "SV",
	"equatorial guinea": "GQ",
	"eritrea": "ER",
	"estonia": "EE",
	"ethiopia": "ET",
	"falkland islands": "FK",
	"faroe islands": "FO",
	"fiji": "FJ",
	"finland": "FI",
	"french polynesia": "PF",
	"gabon": "GA",
	"gambia": "GM",
	"georgia": "GE",
	"ghana": "GH",
	"gibraltar": "GI",
	"greece": "GR",
	"greenland": "GL",
	"grenada": "GD",
	"guam": "GU",
	"guatemala": "GT",
	"guernsey": "GG",
	"guinea": "GN",
	"guinea-bissau": "GW",
	"guyana": "GY",
	"haiti": "HT",
	"honduras": "HN",
	"hong kong": "HK",
	"hungary": "HU",
	"iceland": "IS",
	"indonesia": "ID",
	"iran": "IR",
	"iraq": "IQ",
	"ireland": "IE",
	"isle of man": "IM",
	"israel": "IL",
	"italy": "IT",
	"ivory coast": "CI",
	"jamaica": "JM",
	"japan": "JP",
	"jersey": "JE",
	"jordan": "JO",
	"kazakhstan": "KZ",
	"kenya": "KE",
	"kiribati": "KI",
	"kosovo": "XK",
	"kuwait": "KW",
	"kyrgyzstan": "KG",
	"laos": "LA",
	"latvia": "LV",
	"lebanon": "LB",
	"lesotho": "LS",
	"liberia": "LR",
	"libya": "LY",
	"liechtenstein": "LI",
	"lithuania": "LT",
	"luxembourg": "LU",
	"macau": "MO",
	"macedonia": "MK",
	"madagascar": "MG",
	"malawi": "MW",
	"malaysia": "MY",
	"maldives": "MV",
	"mali": "ML",
	"malta": "MT",
	"marshall islands": "MH",
	"mauritania": "MR",
	"mauritius": "MU",
	"mayotte": "YT",
	"mexico": "MX",
	"micronesia": "FM",
	"moldova": "MD",
	"monaco": "MC",
	"mongolia": "MN",
	"montenegro": "ME",
	"montserrat": "MS",
	"morocco": "MA",
	"mozambique": "MZ",
	"myanmar": "MM",
	"namibia": "NA",
	"nauru": "NR",
	"netherlands": "NL",
	"netherlands antilles": "AN",
	"new caledonia": "NC",
	"new zealand": "NZ",
	"nicaragua": "NI",
	"niger": "NE",
	"nigeria": "NG",
	"niue": "NU",
	"north korea": "KP",
	"northern mariana islands": "MP",
	"norway": "NO",
	"oman": "OM",
	"pakistan": "PK",
	"palau": "PW",
	"palestine": "PS",
	"panama": "PA",
	"papua new guinea": "PG",
	"paraguay": "PY",
	"peru": "PE",
	"philippines": "PH",
	"pitcairn": "PN",
	"poland": "PL",
	"portugal": "PT",
	"puerto rico": "PR",
	"qatar": "QA",
	"republic of the congo": "CG",
	"reunion": "RE",
	"romania": "RO",
	"russia": "RU",
	"rwanda": "RW",
	"saint barthelemy": "BL",
	"saint helena": "SH",
	"saint kitts and nevis": "KN",
	"saint lucia": "LC",
	"saint martin": "MF",
	"saint pierre and miquelon": "PM",
	"saint vincent and the grenadines": "VC",
	"samoa": "WS",
	"san marino": "SM",
	"sao tome and principe": "ST",
	"saudi arabia": "SA",
	"senegal": "SN",
	"serbia": "RS",
	"seychelles": "SC",
	"sierra leone": "SL",
	"singapore": "SG",
	"sint maarten": "SX",
	"slovakia": "SK",
	"slovenia": "SI",
	"solomon islands": "SB",
	"somalia": "SO",
	"south africa": "ZA",
	"south korea": "KR",
	"south sudan": "SS",
	"sri lanka": "LK",
	"sudan": "SD",
	"suriname": "SR",
	"svalbard and jan mayen": "SJ",
	"swaziland": "SZ",
	"sweden": "SE",
	"switzerland": "CH",
	"syria": "SY",
	"taiwan": "TW",
	"tajikistan": "TJ",
	"tanzania": "TZ",
	"thailand": "TH",
	"togo": "TG",
	"tokelau": "TK",
	"tonga": "TO",
	"trinidad and tobago": "TT",
	"tunisia": "TN",
	"turkey": "TR",
	"turkmenistan": "TM",
	"turks and caicos islands": "TC",
	"tuvalu": "TV",
	"u.s. virgin islands": "VI",
	"uganda": "UG",
	"ukraine": "UA",
	"united arab emirates": "AE",
	"united kingdom": "GB",
	"uruguay": "UY",
	"uzbekistan": "UZ",
	"vanuatu": "VU",
	"vatican": "VA",
	"venezuela": "VE",
	"vietnam": "VN",
	"wallis and futuna": "WF",
	"western sahara": "EH",
	"yemen": "YE",
	"zambia": "ZM",
	"zimbabwe": "ZW",
}

// ResolveCountry returns the ISO code of the first comma-separated part of
// location, scanning right to left, that names a known country. It returns ""
// when nothing matches.
func ResolveCountry(location string) string {
	parts := strings.Split(location, ",")
	for i := len(parts) - 1; i >= 0; i-- {
		if code, ok := countries[strings.ToLower(strings.TrimSpace(parts[i]))]; ok {
			return code
		}
	}
	return ""
}

