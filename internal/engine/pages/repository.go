package pages

import (
	"context"

	"biolink/internal/platform/store"
)

type Repository struct {
	store store.Store
}

func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// Get returns nil, nil when the tenant has no config record.
func (r *Repository) Get(ctx context.Context, tenantID string) (*Config, error) {
	var cfg Config
	found, err := store.GetJSON(ctx, r.store, store.ConfigKey(tenantID), &cfg)
	if err != nil || !found {
		return nil, err
	}
	return &cfg, nil
}

func (r *Repository) Save(ctx context.Context, tenantID string, cfg *Config) error {
	return store.SetJSON(ctx, r.store, store.ConfigKey(tenantID), cfg)
}

// Update runs fn against the stored config. A missing record reaches fn with exists=false.
func (r *Repository) Update(ctx context.Context, tenantID string, fn func(cfg *Config, exists bool) error) error {
	return store.UpdateJSON(ctx, r.store, store.ConfigKey(tenantID), fn)
}
