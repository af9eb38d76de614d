package segment

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var (
	adsHeader    = []string{"Email", "Phone", "First Name", "Last Name", "Country", "Zip"}
	mauticHeader = []string{"firstname", "lastname", "email", "phone1", "phone2", "phone3", "address1", "city", "zipcode", "country", "website", "company", "tags"}
)

// WhatsAppColumn is the single column of the messaging spreadsheet.
const WhatsAppColumn = "WhatsApp Number (with country code)"

type exporter struct {
	dir     string
	base    string
	maxRows int
	logger  *zap.Logger
}

// ads writes one ads-platform audience file per segment chunk. Rows without
// an email or phone are left out.
func (e *exporter) ads(ctx context.Context, segs []Segment, subdir, tag string) ([]string, error) {
	var files []string
	for _, s := range segs {
		if len(s.Leads) == 0 {
			continue
		}
		parts := chunks(s.Leads, e.maxRows)
		for i, part := range parts {
			if err := ctx.Err(); err != nil {
				return files, err
			}
			var rows [][]string
			for _, l := range part {
				if l.Email == "" && l.BestPhone == "" {
					continue
				}
				rows = append(rows, []string{l.Email, l.BestPhone, l.FirstName, l.LastName, l.Country, l.Zip})
			}
			path := filepath.Join(e.dir, subdir, e.fileName(s.Name, tag, i, len(parts)))
			if err := writeCSV(path, adsHeader, rows); err != nil {
				return files, err
			}
			e.logger.Info("created audience file", zap.String("platform", tag), zap.String("file", path), zap.Int("contacts", len(rows)))
			files = append(files, path)
		}
	}
	return files, nil
}

// mautic writes the CRM import files, tagging each contact with its segment.
func (e *exporter) mautic(ctx context.Context, segs []Segment) ([]string, error) {
	var files []string
	for _, s := range segs {
		if len(s.Leads) == 0 {
			continue
		}
		parts := chunks(s.Leads, e.maxRows)
		for i, part := range parts {
			if err := ctx.Err(); err != nil {
				return files, err
			}
			var rows [][]string
			for _, l := range part {
				if l.Email == "" && l.Phone == "" && l.Mobile == "" && l.WhatsApp == "" {
					continue
				}
				rows = append(rows, []string{
					l.FirstName, l.LastName, l.Email,
					l.Phone, l.Mobile, l.WhatsApp,
					l.Street, l.City, l.Zip, l.Country,
					l.Website, l.Title, s.Name,
				})
			}
			path := filepath.Join(e.dir, "mautic", e.fileName(s.Name, "mautic", i, len(parts)))
			if err := writeCSV(path, mauticHeader, rows); err != nil {
				return files, err
			}
			e.logger.Info("created crm file", zap.String("file", path), zap.Int("contacts", len(rows)))
			files = append(files, path)
		}
	}
	return files, nil
}

// whatsapp writes every phone number of every segment, deduplicated in first
// seen order, to a single spreadsheet.
func (e *exporter) whatsapp(ctx context.Context, segs []Segment) (string, error) {
	var numbers []string
	seen := make(map[string]struct{})
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		numbers = append(numbers, v)
	}
	for _, s := range segs {
		for _, part := range chunks(s.Leads, e.maxRows) {
			for _, l := range part {
				add(l.Phone)
			}
			for _, l := range part {
				add(l.Mobile)
			}
			for _, l := range part {
				add(l.WhatsApp)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "A1", WhatsAppColumn); err != nil {
		return "", err
	}
	for i, n := range numbers {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := f.SetCellStr(sheet, cell, n); err != nil {
			return "", err
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 36)

	dir := filepath.Join(e.dir, "whatsapp")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, e.base+"_whatsapp.xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	e.logger.Info("created messaging list", zap.String("file", path), zap.Int("contacts", len(numbers)))
	return path, nil
}

// report writes the plain text summary of a run.
func (e *exporter) report(input string, total int, stats []Stats, now time.Time) (string, error) {
	var b strings.Builder
	b.WriteString("Lead Data Preparation Summary Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Input File: %s\n", input)
	fmt.Fprintf(&b, "Total Leads: %d\n\n", total)
	for _, st := range stats {
		if st.Leads == 0 {
			continue
		}
		fmt.Fprintf(&b, "Segment '%s': %d leads\n", st.Name, st.Leads)
		fmt.Fprintf(&b, "  - With Email: %d\n", st.WithEmail)
		fmt.Fprintf(&b, "  - With Phone: %d\n", st.WithPhone)
		fmt.Fprintf(&b, "  - With Website: %d\n\n", st.WithWebsite)
	}
	path := filepath.Join(e.dir, e.base+"_summary_report.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	e.logger.Info("generated summary report", zap.String("file", path))
	return path, nil
}

func (e *exporter) fileName(segment, tag string, part, parts int) string {
	suffix := ""
	if parts > 1 {
		suffix = fmt.Sprintf("_part_%d", part+1)
	}
	return fmt.Sprintf("%s_%s_%s%s.csv", e.base, segment, tag, suffix)
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
