package storage

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/user/lead-crawler/internal/domain"
)

// ErrNoRecords is returned by ExportCSV when called with nothing to write.
var ErrNoRecords = errors.New("no records to export")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportCSV appends records to the CSV at path, skipping any record whose
// values (in schema order) equal a row already in the file or earlier in the
// batch. The header is written only when the file is created. It returns
// the number of rows appended.
func ExportCSV(path string, schema domain.Schema, records []domain.ExportRecord) (int, error) {
	if len(records) == 0 {
		return 0, ErrNoRecords
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return 0, fmt.Errorf("lock %s: %w", path, err)
	}
	defer lock.Unlock()

	existing, exists, err := readRowKeys(path, schema)
	if err != nil {
		return 0, err
	}

	var fresh [][]string
	for _, r := range records {
		row := canonical(schema.Values(r))
		key := rowKey(row)
		if _, dup := existing[key]; dup {
			continue
		}
		existing[key] = struct{}{}
		fresh = append(fresh, row)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if !exists {
		if _, err := f.Write(utf8BOM); err != nil {
			return 0, fmt.Errorf("write %s: %w", path, err)
		}
		if err := w.Write(schema); err != nil {
			return 0, fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.WriteAll(fresh); err != nil {
		return 0, fmt.Errorf("write rows: %w", err)
	}
	return len(fresh), f.Sync()
}

// readRowKeys loads the row keys of an existing export. Columns are matched
// by header name so files whose columns are in another order still dedupe;
// columns missing from the file read as "".
func readRowKeys(path string, schema domain.Schema) (map[string]struct{}, bool, error) {
	keys := make(map[string]struct{})
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return keys, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(SkipBOM(f))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		// An empty file still needs its header.
		return keys, false, nil
	}
	if err != nil {
		return nil, true, fmt.Errorf("read header of %s: %w", path, err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, true, fmt.Errorf("read %s: %w", path, err)
		}
		row := make([]string, len(schema))
		for i, col := range schema {
			if j, ok := index[col]; ok && j < len(rec) {
				row[i] = rec[j]
			}
		}
		keys[rowKey(canonical(row))] = struct{}{}
	}
	return keys, true, nil
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// canonical rewrites line breaks as \n in place. encoding/csv reads a quoted
// \r\n back as \n, so rows must be keyed and written in that form to match
// on the next run.
func canonical(row []string) []string {
	for i, v := range row {
		row[i] = lineBreaks.Replace(v)
	}
	return row
}

// DetectSchema returns the schema among known whose columns match the header
// of the CSV at path. A missing or empty file, or an unknown header, gets
// known[0].
func DetectSchema(path string, known ...domain.Schema) (domain.Schema, error) {
	if len(known) == 0 {
		return nil, errors.New("no schemas to choose from")
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return known[0], nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	header, err := csv.NewReader(SkipBOM(f)).Read()
	if err == io.EOF {
		return known[0], nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	for _, s := range known {
		if sameColumns(header, s) {
			return s, nil
		}
	}
	return known[0], nil
}

func sameColumns(header []string, s domain.Schema) bool {
	if len(header) != len(s) {
		return false
	}
	for i := range header {
		if strings.TrimSpace(header[i]) != s[i] {
			return false
		}
	}
	return true
}

func rowKey(row []string) string {
	return strings.Join(row, "\x1f")
}

// SkipBOM drops a leading UTF-8 byte order mark.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(3)
	}
	return br
}
