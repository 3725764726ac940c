// Package pipeline generates placeholders for a whole catalog in parallel
// and collects them into a report.
package pipeline

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/AnyUserName/blurtune/internal/apperr"
	"github.com/AnyUserName/blurtune/internal/catalog"
	"github.com/AnyUserName/blurtune/internal/options"
	"github.com/AnyUserName/blurtune/internal/preview"
	"github.com/AnyUserName/blurtune/internal/report"
)

// Config holds all parameters for a batch run.
type Config struct {
	Catalog     catalog.Catalog
	CatalogName string
	Codec       preview.Codec
	Encoders    []string
	Profile     string
	Options     options.ProcessingOptions
	Workers     int
}

// Pipeline orchestrates placeholder generation.
type Pipeline struct {
	cfg    Config
	source *sizingSource
	gen    *preview.Generator
	log    *zap.Logger
}

// New creates a configured pipeline.
func New(cfg Config, log *zap.Logger) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if log == nil {
		log = zap.NewNop()
	}
	src := &sizingSource{Catalog: cfg.Catalog}
	return &Pipeline{
		cfg:    cfg,
		source: src,
		gen:    preview.NewGenerator(src, cfg.Codec, log),
		log:    log.Named("pipeline"),
	}
}

// Run generates a placeholder for every catalog image. Individual failures
// are recorded in the report; the run fails only if every image fails.
func (p *Pipeline) Run(ctx context.Context) (*report.Report, error) {
	const op = "pipeline.run"

	if err := options.ValidateProcessing(p.cfg.Options); err != nil {
		return nil, err
	}

	images, err := p.cfg.Catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, apperr.Errorf(apperr.NotFound, op, "no images found in %s", p.cfg.CatalogName)
	}
	p.log.Info("found images", zap.Int("count", len(images)), zap.Stringer("options", p.cfg.Options))

	results := make([]processResult, len(images))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, info := range images {
		wg.Add(1)
		go func(idx int, info catalog.ImageInfo) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = p.processImage(ctx, info)
			if results[idx].err == nil {
				p.log.Debug("done",
					zap.String("image", info.Name),
					zap.Int("bytes", results[idx].entry.DecodedByteLength),
				)
			}
		}(i, info)
	}
	wg.Wait()

	r := report.New(p.cfg.Profile, p.cfg.Options)
	for _, res := range results {
		if res.err != nil {
			if r.Failures == nil {
				r.Failures = make(map[string]string)
			}
			r.Failures[res.name] = res.err.Error()
			p.log.Warn("image failed", zap.String("image", res.name), zap.Error(res.err))
			continue
		}
		r.Entries[res.name] = res.entry
	}

	if len(r.Failures) == len(images) {
		return nil, apperr.Errorf(apperr.CodecError, op, "all %d images failed", len(images))
	}
	if len(r.Failures) > 0 {
		p.log.Warn("some images had errors",
			zap.Int("failed", len(r.Failures)),
			zap.Int("total", len(images)),
		)
	}

	r.BuildInfo = &report.BuildInfo{
		Workers:  p.cfg.Workers,
		Catalog:  p.cfg.CatalogName,
		Encoders: p.cfg.Encoders,
	}
	r.ComputeStats()
	return r, nil
}

// sizingSource records the byte size of every image it reads.
type sizingSource struct {
	catalog.Catalog
	sizes sync.Map
}

func (s *sizingSource) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := s.Catalog.Read(ctx, name)
	if err == nil {
		s.sizes.Store(name, int64(len(data)))
	}
	return data, err
}

func (s *sizingSource) size(name string) int64 {
	if v, ok := s.sizes.Load(name); ok {
		return v.(int64)
	}
	return 0
}
