package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxBrowsers != 2 {
		t.Errorf("MaxBrowsers: got %d, want 2", cfg.MaxBrowsers)
	}
	if cfg.PageTimeout() != 180*time.Second {
		t.Errorf("PageTimeout: got %v", cfg.PageTimeout())
	}
	if cfg.ZoomMin != 10 || cfg.ZoomMax != 22 {
		t.Errorf("zoom range: got [%d, %d]", cfg.ZoomMin, cfg.ZoomMax)
	}
	if got := cfg.UserAgentList(); len(got) != 1 || got[0] != DefaultUserAgent {
		t.Errorf("UserAgentList: got %v", got)
	}
	if cfg.MaxRowsPerFile != 40000 {
		t.Errorf("MaxRowsPerFile: got %d", cfg.MaxRowsPerFile)
	}
}

func TestLoadFile_EnvFileAndOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	body := "MAX_BROWSERS=4\nPROXIES=http://p1:8000, http://p2:8000\nCRAWL_MAX_PAGES=50\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CRAWL_MAX_PAGES", "7")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxBrowsers != 4 {
		t.Errorf("MaxBrowsers: got %d, want 4", cfg.MaxBrowsers)
	}
	if cfg.CrawlMaxPages != 7 {
		t.Errorf("CrawlMaxPages: got %d, want env override 7", cfg.CrawlMaxPages)
	}
	proxies := cfg.ProxyList()
	if len(proxies) != 2 || proxies[1] != "http://p2:8000" {
		t.Errorf("ProxyList: got %v", proxies)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	t.Setenv("MAX_BROWSERS", "0")
	if _, err := LoadFile(filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Fatal("expected error for MAX_BROWSERS=0")
	}
}
