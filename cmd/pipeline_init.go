package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/KingPinFPV/basarometer-sub000/internal/bulk"
	"github.com/KingPinFPV/basarometer-sub000/internal/classify"
	"github.com/KingPinFPV/basarometer-sub000/internal/policy"
	"github.com/KingPinFPV/basarometer-sub000/internal/reconcile"
	"github.com/KingPinFPV/basarometer-sub000/internal/store"
	"github.com/KingPinFPV/basarometer-sub000/internal/verify"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "basarometer.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// loadPolicy returns the policy from cfg.PolicyFile, or the built-in
// defaults when no file is configured.
func loadPolicy() (policy.Policy, error) {
	if cfg.PolicyFile == "" {
		return policy.Default(), nil
	}
	pol, err := policy.Load(cfg.PolicyFile)
	if err != nil {
		return policy.Policy{}, eris.Wrap(err, "load policy")
	}
	return pol, nil
}

// buildPipeline wires the full reconciliation pipeline from configuration.
// The store doubles as run recorder and persistent verifier search cache.
func buildPipeline(st store.Store) (*reconcile.Pipeline, error) {
	pol, err := loadPolicy()
	if err != nil {
		return nil, err
	}

	httpFetcher := bulk.NewHTTPFetcher(bulk.HTTPOptions{
		UserAgent:  cfg.Bulk.UserAgent,
		Timeout:    cfg.Bulk.Timeout(),
		RatePerSec: cfg.Bulk.RatePerSec,
	})
	ftpFetcher := bulk.NewFTPFetcher(bulk.FTPOptions{
		Timeout: cfg.Bulk.Timeout(),
	})

	// classify.New returns a typed nil when disabled; assigning it to the
	// interface directly would make the nil check in bulk useless.
	var classifier bulk.CategoryClassifier
	if c := classify.New(cfg.Classify); c != nil {
		classifier = c
	}

	source := bulk.NewSource(cfg.Bulk, httpFetcher, ftpFetcher, classifier)
	verifier := verify.NewClient(cfg.Verify, verify.WithPersistentCache(st))

	opts := reconcile.Options{
		SelectRatio:   cfg.Pipeline.SelectRatio,
		HardCap:       cfg.Pipeline.HardCap,
		Workers:       cfg.Pipeline.VerifyWorkers,
		SearchTimeout: cfg.Verify.SearchTimeout(),
		DefaultSite:   cfg.Verify.DefaultSite,
	}

	return reconcile.NewPipeline(pol, opts, source, verifier, st), nil
}
