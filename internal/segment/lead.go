package segment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/user/lead-crawler/internal/storage"
)

// missingValues are cell values treated as empty when reading a crawl file.
var missingValues = map[string]struct{}{
	"": {}, "null": {}, "NULL": {}, "nan": {}, "NaN": {}, "NA": {}, "N/A": {}, "n/a": {}, "None": {},
}

// columnAliases maps each field to the header names it is read from. The
// second name covers files written with the older column layout.
var columnAliases = map[string][]string{
	"Title":           {"Title"},
	"Address":         {"Address"},
	"Phone":           {"Phone"},
	"Country":         {"Country", "country_code"},
	"Website":         {"Website"},
	"Email":           {"Email", "Emails"},
	"mobile_number":   {"mobile_number"},
	"whatsapp_number": {"whatsapp_number"},
}

// Lead is one row of a crawl file plus the fields derived from it.
type Lead struct {
	Title    string
	Address  string
	Phone    string
	Country  string
	Website  string
	Email    string
	Mobile   string
	WhatsApp string

	FirstName string
	LastName  string
	Street    string
	City      string
	Zip       string
	BestPhone string
}

func (l Lead) HasEmail() bool   { return l.Email != "" }
func (l Lead) HasPhone() bool   { return l.BestPhone != "" }
func (l Lead) HasWebsite() bool { return l.Website != "" }

// bestPhone prefers the WhatsApp number, then the mobile, then the listing
// phone.
func (l Lead) bestPhone() string {
	for _, p := range []string{l.WhatsApp, l.Mobile, l.Phone} {
		if p != "" {
			return p
		}
	}
	return ""
}

func newLead(get func(string) string) Lead {
	l := Lead{
		Title:    get("Title"),
		Address:  get("Address"),
		Phone:    get("Phone"),
		Country:  get("Country"),
		Website:  get("Website"),
		Email:    get("Email"),
		Mobile:   get("mobile_number"),
		WhatsApp: get("whatsapp_number"),
	}
	l.FirstName, l.LastName = SplitName(l.Title)
	l.Street, l.City, l.Zip = ParseAddress(l.Address)
	l.BestPhone = l.bestPhone()
	return l
}

// LoadLeads reads a crawl CSV and keeps the rows that have an email or a
// phone. It returns the kept leads and the number of rows read.
func LoadLeads(path string) ([]Lead, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readLeads(f)
}

func readLeads(r io.Reader) ([]Lead, int, error) {
	cr := csv.NewReader(storage.SkipBOM(r))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	var leads []Lead
	total := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, total, fmt.Errorf("read row %d: %w", total+2, err)
		}
		total++
		get := func(field string) string {
			for _, name := range columnAliases[field] {
				if i, ok := index[name]; ok && i < len(row) {
					return clean(row[i])
				}
			}
			return ""
		}
		l := newLead(get)
		if l.Email == "" && l.Phone == "" {
			continue
		}
		leads = append(leads, l)
	}
	return leads, total, nil
}

func clean(v string) string {
	v = strings.TrimSpace(v)
	if _, ok := missingValues[v]; ok {
		return ""
	}
	return v
}
