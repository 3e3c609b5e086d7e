package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/account-engine/internal/model"
)

// Repository is a key-value backend. Write must replace the value for key in
// a single atomic operation.
type Repository interface {
	Init(ctx context.Context) error
	Read(ctx context.Context, key string) ([]byte, error) // ErrNotFound when absent
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error // ErrNotFound when absent
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
	Close() error
}

// KVStore stores each account as one JSON document in a Repository.
type KVStore struct {
	repo Repository
}

// NewKVStore wraps repo.
func NewKVStore(repo Repository) *KVStore {
	return &KVStore{repo: repo}
}

func (s *KVStore) Load(ctx context.Context, id string) (*model.Account, error) {
	raw, err := s.repo.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	var acct model.Account
	if err := json.Unmarshal(raw, &acct); err != nil {
		return nil, eris.Wrapf(err, "kv: decode account %s", id)
	}
	acct.Normalize()
	return &acct, nil
}

func (s *KVStore) Save(ctx context.Context, acct *model.Account) (*SaveResult, error) {
	raw, err := json.Marshal(acct)
	if err != nil {
		return nil, eris.Wrapf(err, "kv: encode account %s", acct.ID)
	}
	if err := s.repo.Write(ctx, acct.ID, raw); err != nil {
		return nil, err
	}
	res := &SaveResult{}
	res.Ok("account:" + acct.ID)
	return res, nil
}

func (s *KVStore) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// List returns every account ordered by name.
func (s *KVStore) List(ctx context.Context) ([]model.Account, error) {
	keys, err := s.repo.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Account, 0, len(keys))
	for _, k := range keys {
		acct, err := s.Load(ctx, k)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			zap.L().Warn("kv: skipping unreadable account", zap.String("account_id", k), zap.Error(err))
			continue
		}
		out = append(out, *acct)
	}
	sortAccounts(out)
	return out, nil
}

func (s *KVStore) Migrate(ctx context.Context) error { return s.repo.Init(ctx) }

func (s *KVStore) Close() error { return s.repo.Close() }

func sortAccounts(accts []model.Account) {
	sort.SliceStable(accts, func(i, j int) bool {
		if accts[i].Name != accts[j].Name {
			return accts[i].Name < accts[j].Name
		}
		return accts[i].ID < accts[j].ID
	})
}
