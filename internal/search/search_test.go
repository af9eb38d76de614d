package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/lead-crawler/internal/domain"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigs_JSON(t *testing.T) {
	path := writeFile(t, "search_configs.json", `[
		{"query": "  dentist ", "location": " Kathmandu, Nepal ", "zoom": 30},
		{"query": "cafe", "location": "Pokhara, Nepal"},
		{"query": "gym", "location": "Lalitpur, Nepal", "zoom": "3"},
		{"query": "bakery"},
		{"query": "bar", "location": "Bhaktapur", "zoom": "high"},
		{"query": 12, "location": "x"}
	]`)

	got, err := LoadConfigs(path, 10, 22)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []domain.SearchConfig{
		{Query: "dentist", Location: "Kathmandu, Nepal", Zoom: 22},
		{Query: "cafe", Location: "Pokhara, Nepal", Zoom: 15},
		{Query: "gym", Location: "Lalitpur, Nepal", Zoom: 10},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d configs (%+v), want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("config %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLoadConfigs_YAML(t *testing.T) {
	path := writeFile(t, "search.yaml", "- query: plumber\n  location: Austin, USA\n  zoom: 12\n  lat: 30.27\n  lng: -97.74\n")
	got, err := LoadConfigs(path, 10, 22)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Query != "plumber" || got[0].Zoom != 12 || got[0].Lat != 30.27 {
		t.Fatalf("got %+v", got)
	}
}

func TestLoadConfigs_Errors(t *testing.T) {
	if _, err := LoadConfigs(filepath.Join(t.TempDir(), "nope.json"), 10, 22); err == nil {
		t.Error("expected error for missing file")
	}
	empty := writeFile(t, "empty.json", `[{"query": "x"}]`)
	if _, err := LoadConfigs(empty, 10, 22); !errors.Is(err, ErrNoConfigs) {
		t.Errorf("got %v, want ErrNoConfigs", err)
	}
	bad := writeFile(t, "bad.json", `{"query": "x"}`)
	if _, err := LoadConfigs(bad, 10, 22); err == nil {
		t.Error("expected error for non-array document")
	}
}

func TestSearchURL(t *testing.T) {
	cfg := domain.SearchConfig{Query: "coffee shop", Location: "Kathmandu, Nepal", Zoom: 15}
	if got, want := SearchURL(cfg), "https://www.google.com/maps/search/coffee%20shop%20Kathmandu%2C%20Nepal"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	cfg.Lat, cfg.Lng = 27.7, 85.3
	if got, want := SearchURL(cfg), "https://www.google.com/maps/search/coffee%20shop%20Kathmandu%2C%20Nepal/@27.700000,85.300000,15z"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParseResults(t *testing.T) {
	body := `<div role="feed">
	  <div class="Nv2PK">
	    <div class="qBF1Pd fontHeadlineSmall">Himalayan Java</div>
	    <div class="W4Efsd">
	      <div class="W4Efsd"><span>Coffee shop</span> · <span>Thamel, Kathmandu</span></div>
	      <div class="W4Efsd"><span>Open</span> · <span class="UsdlK">01-4435171</span></div>
	    </div>
	    <a class="lcr4fd" href="https://www.google.com/url?q=https://himalayanjava.com/&amp;sa=U">Website</a>
	  </div>
	  <div class="Nv2PK"><div class="W4Efsd">no name</div></div>
	  <div class="Nv2PK">
	    <div class="qBF1Pd">Corner Cafe</div>
	    <div class="W4Efsd">Cafe · Jhamsikhel</div>
	  </div>
	</div>`

	leads, err := ParseResults(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("got %d leads, want 2", len(leads))
	}
	first := leads[0]
	if first["title"] != "Himalayan Java" || first["address"] != "Thamel, Kathmandu" {
		t.Errorf("first lead: got %+v", first)
	}
	if first["phone"] != "01-4435171" {
		t.Errorf("phone: got %q", first["phone"])
	}
	if first["website"] != "https://himalayanjava.com/" {
		t.Errorf("website: got %q", first["website"])
	}
	if leads[1]["address"] != "Jhamsikhel" {
		t.Errorf("second address: got %q", leads[1]["address"])
	}
	if _, ok := leads[1]["website"]; ok {
		t.Error("expected no website on second lead")
	}
}

func TestFileProvider(t *testing.T) {
	path := writeFile(t, "leads.json", `[{"Title": "A", "PhoneNumber": 9841000000, "WebsiteURL": "a.com", "rating": null}]`)
	leads, err := FileProvider{Path: path}.Search(context.Background(), domain.SearchConfig{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(leads) != 1 || leads[0]["Title"] != "A" || leads[0]["WebsiteURL"] != "a.com" {
		t.Fatalf("got %+v", leads)
	}
	if leads[0]["PhoneNumber"] != "9841000000" {
		t.Errorf("phone: got %q", leads[0]["PhoneNumber"])
	}
	if _, ok := leads[0]["rating"]; ok {
		t.Error("expected null values to be dropped")
	}
}
