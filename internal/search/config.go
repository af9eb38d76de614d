package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/lead-crawler/internal/domain"
)

// DefaultZoom is used when an entry has no zoom.
const DefaultZoom = 15

// ErrNoConfigs is returned when a file holds no usable search entries.
var ErrNoConfigs = errors.New("no valid search configs")

// LoadConfigs reads a JSON (or, by extension, YAML) array of
// {query, location, zoom} entries. Strings are trimmed and zoom is clamped to
// [zoomMin, zoomMax]. Entries missing query or location, or with a zoom that
// is not a number, are skipped.
func LoadConfigs(path string, zoomMin, zoomMax int) ([]domain.SearchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read search configs: %w", err)
	}

	var entries []map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &entries)
	default:
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("parse search configs %s: %w", path, err)
	}

	var out []domain.SearchConfig
	for _, e := range entries {
		cfg, ok := parseEntry(e, zoomMin, zoomMax)
		if ok {
			out = append(out, cfg)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoConfigs
	}
	return out, nil
}

func parseEntry(e map[string]any, zoomMin, zoomMax int) (domain.SearchConfig, bool) {
	query, ok := e["query"].(string)
	if !ok {
		return domain.SearchConfig{}, false
	}
	location, ok := e["location"].(string)
	if !ok {
		return domain.SearchConfig{}, false
	}
	zoom := DefaultZoom
	if raw, present := e["zoom"]; present {
		z, ok := toInt(raw)
		if !ok {
			return domain.SearchConfig{}, false
		}
		zoom = z
	}
	lat, _ := toFloat(e["lat"])
	lng, _ := toFloat(e["lng"])
	return domain.SearchConfig{
		Query:    strings.TrimSpace(query),
		Location: strings.TrimSpace(location),
		Zoom:     ClampZoom(zoom, zoomMin, zoomMax),
		Lat:      lat,
		Lng:      lng,
	}, true
}

// ClampZoom limits zoom to [lo, hi].
func ClampZoom(zoom, lo, hi int) int {
	return max(min(zoom, hi), lo)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
