// Package segment prepares a finished crawl file for marketing platforms:
// it splits the leads into contact-coverage segments and writes ads audience
// files, CRM import files and a messaging spreadsheet for them.
package segment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxRowsPerFile is the chunk size used when Options leaves it unset.
const DefaultMaxRowsPerFile = 40000

type Options struct {
	OutputDir      string
	MaxRowsPerFile int
	// Now stamps the output directory and report. Defaults to time.Now.
	Now func() time.Time
}

// Summary describes a finished ProcessAll run.
type Summary struct {
	OutputDir string
	Loaded    int
	Kept      int
	Segments  []Stats
	Files     []string
}

// Processor turns one crawl CSV into platform files.
type Processor struct {
	input  string
	base   string
	opts   Options
	logger *zap.Logger
}

func NewProcessor(input string, opts Options, l *zap.Logger) *Processor {
	if opts.MaxRowsPerFile <= 0 {
		opts.MaxRowsPerFile = DefaultMaxRowsPerFile
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if l == nil {
		l = zap.NewNop()
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return &Processor{input: input, base: base, opts: opts, logger: l}
}

// ProcessAll loads the input, segments it and writes every platform file
// into a new timestamped directory under the output dir.
func (p *Processor) ProcessAll(ctx context.Context) (*Summary, error) {
	leads, total, err := LoadLeads(p.input)
	if err != nil {
		return nil, err
	}
	p.logger.Info("loaded leads", zap.String("file", p.input), zap.Int("rows", total), zap.Int("with_contact", len(leads)))

	now := p.opts.Now()
	dir := filepath.Join(p.opts.OutputDir, fmt.Sprintf("%s_completed_%s", p.base, now.Format("20060102_150405")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	segs := Partition(leads)
	sum := &Summary{OutputDir: dir, Loaded: total, Kept: len(leads)}
	for _, s := range segs {
		st := s.Stats()
		sum.Segments = append(sum.Segments, st)
		if st.Leads > 0 {
			p.logger.Info("segment", zap.String("name", st.Name), zap.Int("leads", st.Leads))
		}
	}

	e := &exporter{dir: dir, base: p.base, maxRows: p.opts.MaxRowsPerFile, logger: p.logger}
	results := make([][]string, 5)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		results[0], err = e.ads(gCtx, segs, "meta_ads", "meta")
		return err
	})
	g.Go(func() (err error) {
		results[1], err = e.ads(gCtx, segs, "google_ads", "google")
		return err
	})
	g.Go(func() (err error) {
		results[2], err = e.mautic(gCtx, segs)
		return err
	})
	g.Go(func() error {
		path, err := e.whatsapp(gCtx, segs)
		results[3] = []string{path}
		return err
	})
	g.Go(func() error {
		path, err := e.report(p.input, len(leads), sum.Segments, now)
		results[4] = []string{path}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum.Files = slices.Concat(results...)
	p.logger.Info("all files prepared", zap.String("dir", dir), zap.Int("files", len(sum.Files)))
	return sum, nil
}
