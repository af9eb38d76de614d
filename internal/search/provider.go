package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/user/lead-crawler/internal/domain"
)

// Provider turns a search config into raw leads.
type Provider interface {
	Search(ctx context.Context, cfg domain.SearchConfig) ([]domain.RawLead, error)
}

// FileProvider serves leads exported by another tool as a JSON array of
// objects. Every search returns the whole file; non-string values are
// rendered with fmt.
type FileProvider struct {
	Path string
}

func (p FileProvider) Search(_ context.Context, _ domain.SearchConfig) ([]domain.RawLead, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("read leads file: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("parse leads file %s: %w", p.Path, err)
	}

	leads := make([]domain.RawLead, 0, len(rows))
	for _, row := range rows {
		lead := make(domain.RawLead, len(row))
		for k, v := range row {
			switch val := v.(type) {
			case nil:
			case string:
				lead[k] = val
			default:
				lead[k] = fmt.Sprint(val)
			}
		}
		leads = append(leads, lead)
	}
	return leads, nil
}
