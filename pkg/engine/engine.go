// Package engine wires catalogs, correct matches and the filtered list into
// one matcher per record field.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/brush"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/catalog"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/config"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/correct"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/matcher"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

// ErrUnknownField is returned for a field name no matcher handles.
var ErrUnknownField = errors.New("unknown field")

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. It is passed down to every matcher.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine holds one matcher per field. It is immutable after New and safe for
// concurrent use.
type Engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	catalogs map[catalog.Kind]*catalog.Compiled
	correct  *correct.Index
	filtered *correct.Filtered
	matchers map[types.Field]matcher.Matcher
}

// New loads and compiles every catalog named by cfg and builds the field
// matchers. Any load or compile error is fatal.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}

	catalogs, err := loadCatalogs(cfg)
	if err != nil {
		return nil, err
	}
	e.catalogs = catalogs

	e.correct, err = correct.LoadPath(cfg.Catalog.CorrectMatches)
	if err != nil {
		return nil, fmt.Errorf("loading correct matches: %w", err)
	}
	e.filtered, err = correct.LoadFilteredPath(cfg.Catalog.Filtered)
	if err != nil {
		return nil, fmt.Errorf("loading filtered entries: %w", err)
	}

	withLog := matcher.WithLogger(e.logger)
	e.matchers = map[types.Field]matcher.Matcher{
		types.FieldRazor: matcher.NewSimple(types.FieldRazor, catalogs[catalog.KindRazor], e.correct, e.filtered, withLog),
		types.FieldBlade: matcher.NewBlade(catalogs[catalog.KindBlade], e.correct, e.filtered, withLog),
		types.FieldSoap:  matcher.NewSimple(types.FieldSoap, catalogs[catalog.KindSoap], e.correct, e.filtered, withLog),
		types.FieldBrush: brush.New(brush.Catalogs{
			Brushes: catalogs[catalog.KindBrush],
			Knots:   catalogs[catalog.KindKnot],
			Handles: catalogs[catalog.KindHandle],
		}, e.correct, e.filtered, brush.WithLogger(e.logger)),
	}

	e.logger.Debug("engine ready",
		"catalog_dir", cfg.Catalog.Dir,
		"correct_matches", e.correct.Len(),
		"workers", e.workers())
	return e, nil
}

// loadCatalogs loads and compiles every catalog kind concurrently.
func loadCatalogs(cfg *config.Config) (map[catalog.Kind]*catalog.Compiled, error) {
	opts := catalog.CompileOptions{
		MatchTimeout:      cfg.Match.RegexTimeout,
		ProbeBacktracking: !cfg.Match.SkipProbe,
	}
	loader := catalog.NewLoader()
	compiled := make([]*catalog.Compiled, len(catalog.Kinds))

	var g errgroup.Group
	for i, kind := range catalog.Kinds {
		g.Go(func() error {
			c, err := loader.LoadPath(kind, cfg.Catalog.CatalogPath(string(kind)))
			if err != nil {
				return fmt.Errorf("loading %s catalog: %w", kind, err)
			}
			compiled[i], err = catalog.Compile(c, opts)
			if err != nil {
				return fmt.Errorf("compiling %s catalog: %w", kind, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[catalog.Kind]*catalog.Compiled, len(compiled))
	for i, kind := range catalog.Kinds {
		out[kind] = compiled[i]
	}
	return out, nil
}

// Matcher returns the matcher for field.
func (e *Engine) Matcher(field types.Field) (matcher.Matcher, error) {
	m, ok := e.matchers[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return m, nil
}

// Match resolves text for field without format context.
func (e *Engine) Match(field types.Field, text string) (*types.MatchResult, error) {
	return e.MatchWithContext(field, text, "")
}

// MatchWithContext resolves text for field. Only blades use the format,
// which is the razor format.
func (e *Engine) MatchWithContext(field types.Field, text, format string) (*types.MatchResult, error) {
	m, err := e.Matcher(field)
	if err != nil {
		return nil, err
	}
	return m.MatchWithContext(text, format), nil
}

// Catalog returns the compiled catalog of kind.
func (e *Engine) Catalog(kind catalog.Kind) *catalog.Compiled {
	return e.catalogs[kind]
}

// Correct returns the correct-matches index.
func (e *Engine) Correct() *correct.Index {
	return e.correct
}

// Filtered returns the filtered-entries list.
func (e *Engine) Filtered() *correct.Filtered {
	return e.filtered
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// workers is the batch pool size.
func (e *Engine) workers() int {
	if e.cfg.Batch.Workers > 0 {
		return e.cfg.Batch.Workers
	}
	return runtime.NumCPU()
}

// MatchBatch matches records on a bounded worker pool. Results keep input
// order. A record that fails to match degrades to error-flagged unmatched
// results and the batch continues; only context cancellation stops it.
func (e *Engine) MatchBatch(ctx context.Context, records []types.Record) ([]*types.RecordResult, error) {
	results := make([]*types.RecordResult, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for i := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.MatchRecord(&records[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
