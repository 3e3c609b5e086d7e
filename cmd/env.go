package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/account-engine/internal/account"
	"github.com/sells-group/account-engine/internal/analyze"
	"github.com/sells-group/account-engine/internal/config"
	"github.com/sells-group/account-engine/internal/db"
	"github.com/sells-group/account-engine/internal/store"
	"github.com/sells-group/account-engine/pkg/anthropic"
)

// openStore connects the backend named by driver. url overrides the
// configured location when non-empty.
func openStore(ctx context.Context, sc config.StoreConfig, driver, url string) (store.Store, error) {
	var st store.Store
	switch driver {
	case "sqlite":
		if url == "" {
			url = sc.DatabaseURL
		}
		repo, err := store.NewSQLite(url)
		if err != nil {
			return nil, err
		}
		st = store.NewKVStore(repo)
	case "redis":
		if url == "" {
			url = sc.RedisURL
		}
		repo, err := store.NewRedis(ctx, url)
		if err != nil {
			return nil, err
		}
		st = store.NewKVStore(repo)
	case "postgres":
		if url == "" {
			url = sc.DatabaseURL
		}
		pool, err := db.Connect(ctx, url, db.PoolConfig{MaxConns: sc.MaxConns, MinConns: sc.MinConns})
		if err != nil {
			return nil, err
		}
		st = store.NewPostgres(pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", driver)
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store schema")
	}
	return st, nil
}

// initService opens the configured store and wires the analyzer when an
// Anthropic key is present. Callers close the returned store.
func initService(ctx context.Context) (*account.Service, store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, nil, err
	}
	st, err := openStore(ctx, cfg.Store, cfg.Store.Driver, "")
	if err != nil {
		return nil, nil, err
	}

	var opts []account.Option
	if cfg.Anthropic.Key != "" {
		client := anthropic.NewClient(cfg.Anthropic.Key)
		opts = append(opts, account.WithAnalyzer(analyze.New(client, analyze.Config{
			Model:     cfg.Anthropic.Model,
			MaxTokens: cfg.Anthropic.MaxTokens,
		})))
	}
	return account.NewService(st, opts...), st, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
