package analytics

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

// Create writes an empty record unless one already exists.
func (r *Repository) Create(ctx context.Context, tenantID string) error {
	return store.UpdateJSON(ctx, r.store, store.AnalyticsKey(tenantID), func(rec *Record, exists bool) error {
		if exists {
			return store.ErrSkip
		}
		*rec = *NewRecord()
		return nil
	})
}

// Get returns nil, nil when the tenant has no analytics record.
func (r *Repository) Get(ctx context.Context, tenantID string) (*Record, error) {
	var rec Record
	found, err := store.GetJSON(ctx, r.store, store.AnalyticsKey(tenantID), &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

// append is an atomic read-modify-write on the tenant's log. A missing record is left missing.
func (r *Repository) append(ctx context.Context, tenantID string, fn func(rec *Record)) (bool, error) {
	appended := false
	err := store.UpdateJSON(ctx, r.store, store.AnalyticsKey(tenantID), func(rec *Record, exists bool) error {
		if !exists {
			return store.ErrSkip
		}
		fn(rec)
		appended = true
		return nil
	})
	return appended, err
}

func (r *Repository) AppendVisit(ctx context.Context, tenantID string, v Visit) (bool, error) {
	return r.append(ctx, tenantID, func(rec *Record) {
		rec.Visits = append(rec.Visits, v)
	})
}

func (r *Repository) AppendClick(ctx context.Context, tenantID string, c Click) (bool, error) {
	return r.append(ctx, tenantID, func(rec *Record) {
		rec.Clicks = append(rec.Clicks, c)
	})
}
