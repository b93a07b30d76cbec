package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/hydroguard/hydroguard/internal/alerts"
	"github.com/hydroguard/hydroguard/internal/api"
	"github.com/hydroguard/hydroguard/internal/config"
	"github.com/hydroguard/hydroguard/internal/engine"
	"github.com/hydroguard/hydroguard/internal/metrics"
	"github.com/hydroguard/hydroguard/internal/profile"
	"github.com/hydroguard/hydroguard/internal/scraper"
	"github.com/hydroguard/hydroguard/internal/store"
	"github.com/hydroguard/hydroguard/pkg/types"
)

// Service owns the long-running pieces of a hydroguard process.
type Service struct {
	Engine  *engine.Engine
	Store   *store.Store
	Alerts  *alerts.Engine
	Metrics *metrics.Metrics

	mu       sync.Mutex
	cfg      *config.Config
	gateways []*scraper.Gateway
}

// New builds a Service from cfg. Profile overrides are applied to a fresh
// registry and the Prometheus collectors are registered with reg.
func New(cfg *config.Config, reg *prometheus.Registry) (*Service, error) {
	profiles := profile.NewRegistry()
	if err := profiles.ApplyOverrides(cfg.Engine.Profiles); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	eng, err := engine.New(cfg.Engine.Pipeline(), profiles)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, reg)
	eng.SetObserver(m)

	s := &Service{
		Engine:  eng,
		Store:   store.New(cfg.Service.SnapshotTTL),
		Alerts:  alerts.New(cfg.Alerts),
		Metrics: m,
		cfg:     cfg,
	}
	for _, src := range cfg.Sources {
		s.gateways = append(s.gateways, scraper.New(src))
		slog.Info("service: registered source",
			"id", src.ID, "asset", src.Asset, "endpoint", src.Endpoint, "interval", src.ScrapeInterval)
	}
	return s, nil
}

// Config returns the active configuration.
func (s *Service) Config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Bootstrap loads every configured asset, seeds its anomaly baseline and
// evaluates it once. Assets whose file cannot be read are skipped and
// reported in the returned error.
func (s *Service) Bootstrap() error {
	cfg := s.Config()
	var errs []error
	for _, a := range cfg.Assets {
		st, err := cfg.LoadAsset(a)
		if err != nil {
			slog.Error("service: skipping asset", "asset", a.ID, "err", err)
			errs = append(errs, err)
			continue
		}
		s.Engine.SeedBaseline(st)
		s.Engine.Update(st.ID, func(op engine.Op) {
			s.commit(op.Process(engine.Input{State: st, Logs: s.Store.Logs(st.ID)}))
		})
	}
	return errors.Join(errs...)
}

// Poll scrapes gw once and, on success, evaluates its asset with the
// fresh readings. A failed scrape keeps the last evaluated state and
// counts against the asset's availability.
//
// The load, evaluation and store of the asset run under the engine's
// per-asset lock, so a concurrent reset is never overwritten.
func (s *Service) Poll(ctx context.Context, gw *scraper.Gateway) error {
	src := gw.Source()
	start := time.Now()
	res, err := gw.Scrape(ctx)
	if err == nil {
		err = res.Err
	}
	ok := err == nil
	s.Engine.RecordFetch(src.Asset, ok)
	s.Metrics.Scraped(src.Asset, ok, time.Since(start))
	if !ok {
		return err
	}

	s.Engine.Update(src.Asset, func(op engine.Op) {
		cur, found := s.Store.Get(src.Asset)
		if !found {
			// Bootstrap could not load the asset; retry from its description.
			cur.State, err = s.seed(src.Asset)
			if err != nil {
				err = fmt.Errorf("service: source %q: %w", src.ID, err)
				return
			}
		}
		next := res.Apply(cur.State)

		in := engine.Input{
			State:       next,
			Diagnostics: res.Diagnostics,
			Logs:        s.Store.Logs(src.Asset),
		}
		if p, ok := res.MeasuredPower(); ok {
			snap := engine.Snapshot(next, res.ScrapedAt)
			snap.PowerMW = p
			in.Telemetry = &snap
		}
		s.commit(op.Process(in))
	})
	return err
}

// seed loads the configured description of asset and sets its anomaly
// baseline.
func (s *Service) seed(asset string) (types.AssetState, error) {
	cfg := s.Config()
	for _, a := range cfg.Assets {
		if a.ID != asset {
			continue
		}
		st, err := cfg.LoadAsset(a)
		if err != nil {
			return st, err
		}
		s.Engine.SeedBaseline(st)
		return st, nil
	}
	return types.AssetState{}, fmt.Errorf("asset %q not configured", asset)
}

// commit publishes an evaluation outcome.
func (s *Service) commit(out engine.Output) {
	s.Store.Put(out.State)
	for _, td := range out.Truth {
		s.Store.PutTruth(td)
	}
	if a := out.Anomaly; a != nil {
		s.Store.AddAnomaly(*a)
		s.Alerts.NotifyAnomaly(*a)
	}
	s.Alerts.Evaluate(out.State)
}

// Reload applies a changed configuration. Alert rules, risk thresholds,
// market price and profile overrides take effect immediately. Every
// asset is re-read from its description and re-evaluated with its
// accumulated structural state kept; unregistered assets are dropped.
// Source changes need a restart.
func (s *Service) Reload(cfg *config.Config) {
	s.mu.Lock()
	old := s.cfg
	s.cfg = cfg
	s.mu.Unlock()

	s.Alerts.Reload(cfg.Alerts)
	if err := s.Engine.Profiles().ApplyOverrides(cfg.Engine.Profiles); err != nil {
		slog.Error("service: profile overrides rejected", "err", err)
	}
	if err := s.Engine.Reconfigure(cfg.Engine.Pipeline()); err != nil {
		slog.Error("service: engine settings rejected", "err", err)
	}
	s.refreshAssets(cfg)
	for _, id := range removedAssets(old.Assets, cfg.Assets) {
		s.Store.Remove(id)
		s.Engine.ResetTruth(id)
		s.Engine.ResetStream(id)
		s.Metrics.Forget(id)
		slog.Info("service: asset removed", "asset", id)
	}
	if !sameSources(old.Sources, cfg.Sources) {
		slog.Warn("service: source changes take effect after restart")
	}
	slog.Info("service: config reloaded",
		"assets", len(cfg.Assets), "rules", len(cfg.Alerts.Rules), "webhooks", len(cfg.Alerts.Webhooks))
}

// refreshAssets re-reads every asset description in cfg and evaluates it,
// carrying over the structural state of assets already in the store.
func (s *Service) refreshAssets(cfg *config.Config) {
	for _, a := range cfg.Assets {
		st, err := cfg.LoadAsset(a)
		if err != nil {
			slog.Error("service: asset reload failed, keeping previous state", "asset", a.ID, "err", err)
			continue
		}
		s.Engine.SeedBaseline(st)
		s.Engine.Update(st.ID, func(op engine.Op) {
			if cur, ok := s.Store.Get(st.ID); ok {
				st.Structural = cur.State.Structural
			}
			s.commit(op.Process(engine.Input{State: st, Logs: s.Store.Logs(st.ID)}))
		})
	}
}

// removedAssets returns the IDs in old that next no longer registers.
func removedAssets(old, next []config.Asset) []string {
	keep := make(map[string]bool, len(next))
	for _, a := range next {
		keep[a.ID] = true
	}
	var out []string
	for _, a := range old {
		if !keep[a.ID] {
			out = append(out, a.ID)
		}
	}
	return out
}

func sameSources(a, b []config.Source) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Endpoint != b[i].Endpoint || a[i].Asset != b[i].Asset {
			return false
		}
	}
	return true
}

// Handler returns the combined HTTP handler: the REST API under /api/ and
// the Prometheus exposition on the configured metrics path.
func (s *Service) Handler() http.Handler {
	cfg := s.Config().Service
	h := api.New(s.Store, s.Alerts, s.Engine)

	mux := http.NewServeMux()
	mux.Handle("/api/", api.APIKey(cfg.Auth.Mode, cfg.Auth.EffectiveHeader(), cfg.Auth.Key(), h))
	mux.Handle(cfg.MetricsPath, s.Metrics.Handler())
	return mux
}

// Run serves HTTP and polls every source until ctx is cancelled. It
// returns the first fatal error.
func (s *Service) Run(ctx context.Context) error {
	cfg := s.Config()
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Service.HTTPPort),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("service: HTTP server listening", "port", cfg.Service.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("service: http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		s.Store.Run(ctx)
		return nil
	})
	for _, gw := range s.gateways {
		gw := gw
		g.Go(func() error {
			s.pollLoop(ctx, gw)
			return nil
		})
	}
	if len(s.gateways) == 0 {
		slog.Warn("service: no sources configured, assets are evaluated once")
	}

	return g.Wait()
}

// pollLoop polls gw immediately and then on every scrape interval.
func (s *Service) pollLoop(ctx context.Context, gw *scraper.Gateway) {
	src := gw.Source()
	t := time.NewTicker(src.ScrapeInterval)
	defer t.Stop()
	for {
		if err := s.Poll(ctx, gw); err != nil {
			slog.Warn("service: poll failed", "source", src.ID, "asset", src.Asset, "err", err)
		} else if e, ok := s.Store.Get(src.Asset); ok {
			logEvaluation(e.State)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func logEvaluation(st types.AssetState) {
	args := []any{"asset", st.ID, "status", st.Risk.Status, "urgency", st.Risk.Urgency}
	if p := st.Physics; p != nil {
		args = append(args, "power_mw", p.PowerMW.StringFixed(2))
	}
	slog.Debug("service: asset evaluated", args...)
}
