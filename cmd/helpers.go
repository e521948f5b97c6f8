package main

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/clauselens/workbench-cli/internal/store"
	"github.com/clauselens/workbench-cli/internal/tagcache"
	"github.com/clauselens/workbench-cli/internal/workspace"
	"github.com/clauselens/workbench-cli/pkg/authsvc"
	"github.com/clauselens/workbench-cli/pkg/docstore"
	"github.com/clauselens/workbench-cli/pkg/extractor"
	"github.com/clauselens/workbench-cli/pkg/library"
	"github.com/clauselens/workbench-cli/pkg/riskscore"
	"github.com/clauselens/workbench-cli/pkg/similarity"
	"github.com/clauselens/workbench-cli/pkg/tagsvc"
)

// initJournal opens the configured session journal backend.
func initJournal(ctx context.Context) (store.Store, error) {
	switch cfg.Journal.Driver {
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Journal.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "init postgres journal")
		}
		return st, nil
	case "sqlite", "":
		st, err := store.NewSQLite(cfg.Journal.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "init sqlite journal")
		}
		return st, nil
	default:
		return nil, eris.Errorf("unknown journal driver %q", cfg.Journal.Driver)
	}
}

// newController wires a workspace controller from config. The journal is
// auxiliary: if it cannot be opened the controller still works, minus
// history.
func newController(ctx context.Context) (*workspace.Controller, store.Store) {
	var journal store.Store
	if st, err := initJournal(ctx); err != nil {
		zap.L().Warn("journal unavailable, history disabled", zap.Error(err))
	} else if err := st.Migrate(ctx); err != nil {
		zap.L().Warn("journal migration failed, history disabled", zap.Error(err))
		_ = st.Close()
	} else {
		journal = st
	}

	ctrl := workspace.New(
		docstore.NewClient(cfg.DocStore.Key, docstore.WithBaseURL(cfg.DocStore.BaseURL)),
		extractor.NewClient(cfg.Extractor.Key, extractor.WithBaseURL(cfg.Extractor.BaseURL)),
		similarity.NewClient(cfg.Similarity.Key,
			similarity.WithBaseURL(cfg.Similarity.BaseURL),
			similarity.WithRateLimit(cfg.Similarity.RateLimit, cfg.Similarity.Burst)),
		tagsvc.NewClient(cfg.Tags.Key, tagsvc.WithBaseURL(cfg.Tags.BaseURL)),
		riskscore.NewClient(cfg.Risk.Key, riskscore.WithBaseURL(cfg.Risk.BaseURL)),
		library.NewClient(cfg.Library.Key, library.WithBaseURL(cfg.Library.BaseURL)),
		authsvc.NewClient(cfg.Auth.Key, authsvc.WithBaseURL(cfg.Auth.BaseURL)),
		journal,
		tagcache.New(time.Duration(cfg.Tags.CacheTTLSecs)*time.Second),
	)
	return ctrl, journal
}

// printOut renders a value in the selected output format.
func printOut(w io.Writer, v any) error {
	switch outputFormat {
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
