// Package service wires the extractor, normalizer, analytics engine and
// explainer into one linear pipeline.
package service

import (
	"context"
	"fmt"

	"github.com/phuslu/log"
	"golang.org/x/sync/singleflight"

	"github.com/dyike/psxlens/internal/analytics"
	"github.com/dyike/psxlens/internal/cache"
	"github.com/dyike/psxlens/internal/explain"
	"github.com/dyike/psxlens/internal/models"
	"github.com/dyike/psxlens/internal/normalize"
)

// TableSource yields the raw tables of a page.
type TableSource interface {
	Extract(ctx context.Context, url string) ([]models.RawTable, error)
}

type Options struct {
	URL        string
	TopN       int
	Source     TableSource
	Normalizer *normalize.Normalizer
	Cache      *cache.SnapshotCache
	Explainer  *explain.Explainer
	Logger     *log.Logger
}

type MarketService struct {
	url        string
	topN       int
	source     TableSource
	normalizer *normalize.Normalizer
	cache      *cache.SnapshotCache
	explainer  *explain.Explainer
	group      singleflight.Group
	logger     *log.Logger
}

func NewMarketService(opts Options) *MarketService {
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	if opts.Normalizer == nil {
		opts.Normalizer = normalize.New(nil, opts.Logger)
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewSnapshotCache(0, opts.Logger)
	}
	return &MarketService{
		url:        opts.URL,
		topN:       opts.TopN,
		source:     opts.Source,
		normalizer: opts.Normalizer,
		cache:      opts.Cache,
		explainer:  opts.Explainer,
		logger:     opts.Logger,
	}
}

func (s *MarketService) URL() string { return s.url }

func (s *MarketService) Explainer() *explain.Explainer { return s.explainer }

// Snapshot returns the cached snapshot or scrapes a new one. Concurrent
// scrapes of the same URL share a single render.
func (s *MarketService) Snapshot(ctx context.Context, refresh bool) (*models.Snapshot, error) {
	if !refresh {
		if snap, ok := s.cache.Get(s.url); ok {
			return snap, nil
		}
	}

	v, err, shared := s.group.Do(s.url, func() (any, error) {
		return s.scrape(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug().Str("url", s.url).Msg("joined in-flight scrape")
	}
	return v.(*models.Snapshot), nil
}

func (s *MarketService) scrape(ctx context.Context) (*models.Snapshot, error) {
	s.logger.Info().Str("url", s.url).Msg("scraping market summary")

	tables, err := s.source.Extract(ctx, s.url)
	if err != nil {
		return nil, err
	}
	snap, err := s.normalizer.NormalizeAll(s.url, tables)
	if err != nil {
		return nil, err
	}
	s.cache.Set(s.url, snap)
	return snap, nil
}

// Analyze answers q against snap without touching the network.
func (s *MarketService) Analyze(snap *models.Snapshot, q Query) (*analytics.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	n := q.N
	if n == 0 {
		n = s.topN
	}

	engine := analytics.NewEngine(snap)
	switch q.Intent {
	case IntentOverview:
		return engine.Overview(n), nil
	case IntentGainers:
		return engine.TopGainers(n), nil
	case IntentLosers:
		return engine.TopLosers(n), nil
	case IntentVolume:
		return engine.TopByVolume(n), nil
	case IntentSymbol:
		return engine.SnapshotFor(q.Symbols[0])
	case IntentCompare:
		return engine.CompareVolume(q.Symbols)
	}
	return nil, fmt.Errorf("unknown intent %q", q.Intent)
}

// Run executes q end to end. Extraction, schema and lookup failures abort;
// a failed explanation only adds a warning.
func (s *MarketService) Run(ctx context.Context, q Query) (*Response, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	snap, err := s.Snapshot(ctx, q.Refresh)
	if err != nil {
		return nil, err
	}
	return s.RunOn(ctx, snap, q)
}

// RunOn is Run against an already captured snapshot.
func (s *MarketService) RunOn(ctx context.Context, snap *models.Snapshot, q Query) (*Response, error) {
	res, err := s.Analyze(snap, q)
	if err != nil {
		return nil, err
	}

	resp := &Response{Result: res}
	resp.Warnings = append(resp.Warnings, res.Warnings...)

	if q.wantsExplanation() {
		explained := s.explainer.Explain(ctx, res, q.label(res))
		resp.Explanation = explained.Text
		if explained.Warning != "" {
			resp.Warnings = append(resp.Warnings, explained.Warning)
		}
	}
	return resp, nil
}
