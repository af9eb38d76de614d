package domain

import "time"

// EmailSentinel is written to the Email column when no address was found.
const EmailSentinel = "null"

// SearchConfig is one maps search to run. Lat and Lng are optional; when both
// are zero the search is not pinned to a map position.
type SearchConfig struct {
	Query    string  `json:"query" yaml:"query"`
	Location string  `json:"location" yaml:"location"`
	Zoom     int     `json:"zoom" yaml:"zoom"`
	Lat      float64 `json:"lat,omitempty" yaml:"lat,omitempty"`
	Lng      float64 `json:"lng,omitempty" yaml:"lng,omitempty"`
}

// RawLead is a record as produced by a search provider. Field names vary
// between providers.
type RawLead map[string]string

// StandardizedLead holds the four fields the pipeline reads from a RawLead.
type StandardizedLead struct {
	Title   string
	Address string
	Phone   string
	Website string
}

// ContactResult is what a site crawl found. Empty strings mean not found.
type ContactResult struct {
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	WhatsApp string `json:"whatsapp"`
}

// Complete reports whether every contact kind has been found.
func (c ContactResult) Complete() bool {
	return c.Email != "" && c.Mobile != "" && c.WhatsApp != ""
}

// ExportRecord is one output row keyed by column name.
type ExportRecord map[string]string

// Schema is an ordered list of CSV columns.
type Schema []string

// legacyColumns maps SchemaV7 column names to their current names.
var legacyColumns = map[string]string{
	"country_code": "Country",
	"Emails":       "Email",
}

// Values returns the record's values in schema order. Missing columns are
// empty.
func (s Schema) Values(r ExportRecord) []string {
	out := make([]string, len(s))
	for i, col := range s {
		v, ok := r[col]
		if !ok {
			v = r[legacyColumns[col]]
		}
		out[i] = v
	}
	return out
}

var (
	// SchemaV8 is the current crawl output layout.
	SchemaV8 = Schema{"Title", "Address", "Phone", "Country", "Website", "Email", "mobile_number", "whatsapp_number"}
	// SchemaV7 is the layout written by older runs. Files that still carry
	// it are appended to in that layout.
	SchemaV7 = Schema{"Title", "Address", "Phone", "country_code", "Website", "Emails"}
)

// Lead is a persisted crawl outcome.
type Lead struct {
	Title     string    `json:"title"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Country   string    `json:"country"`
	Website   string    `json:"website"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile_number"`
	WhatsApp  string    `json:"whatsapp_number"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Record converts the lead to a SchemaV8 row.
func (l Lead) Record() ExportRecord {
	email := l.Email
	if email == "" {
		email = EmailSentinel
	}
	return ExportRecord{
		"Title":           l.Title,
		"Address":         l.Address,
		"Phone":           l.Phone,
		"Country":         l.Country,
		"Website":         l.Website,
		"Email":           email,
		"mobile_number":   l.Mobile,
		"whatsapp_number": l.WhatsApp,
	}
}

// SearchRequest is the body accepted by the search endpoint.
type SearchRequest struct {
	Configs []SearchConfig `json:"configs"`
}
