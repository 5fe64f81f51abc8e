package repositories

import (
	"context"
	"strings"

	"biolink/internal/platform/models"
	"biolink/internal/platform/store"
)

// TenantRecord pairs a tenant with the key it was read from; the two can disagree
// on records written before slug normalisation.
type TenantRecord struct {
	Key    string
	Tenant *models.Tenant
}

// Slug is the key suffix, falling back for records whose name field is empty.
func (r TenantRecord) Slug() string {
	if r.Tenant.Name != "" {
		return r.Tenant.Name
	}
	return strings.TrimPrefix(r.Key, store.TenantPrefix)
}

type TenantRepository struct {
	store store.Store
}

func NewTenantRepository(s store.Store) *TenantRepository {
	return &TenantRepository{store: s}
}

// GetBySlug returns nil, nil when no tenant is stored under slug.
func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	var t models.Tenant
	found, err := store.GetJSON(ctx, r.store, store.TenantKey(slug), &t)
	if err != nil || !found {
		return nil, err
	}
	return &t, nil
}

// ExistsFold reports whether any tenant key matches slug ignoring case. Keys that differ
// only by case collapse into one when slugs are normalised to uppercase.
func (r *TenantRepository) ExistsFold(ctx context.Context, slug string) (bool, error) {
	keys, err := r.store.ListKeys(ctx, store.TenantPrefix)
	if err != nil {
		return false, err
	}
	for _, key := range keys {
		if strings.EqualFold(strings.TrimPrefix(key, store.TenantPrefix), slug) {
			return true, nil
		}
	}
	return false, nil
}

func (r *TenantRepository) Save(ctx context.Context, t *models.Tenant) error {
	return store.SetJSON(ctx, r.store, store.TenantKey(t.Name), t)
}

func (r *TenantRepository) Delete(ctx context.Context, slug string) error {
	return r.store.Delete(ctx, store.TenantKey(slug))
}

func (r *TenantRepository) List(ctx context.Context) ([]TenantRecord, error) {
	keys, err := r.store.ListKeys(ctx, store.TenantPrefix)
	if err != nil {
		return nil, err
	}

	records := make([]TenantRecord, 0, len(keys))
	for _, key := range keys {
		var t models.Tenant
		found, err := store.GetJSON(ctx, r.store, key, &t)
		if err != nil {
			return nil, err
		}
		if !found {
			// deleted between list and get
			continue
		}
		records = append(records, TenantRecord{Key: key, Tenant: &t})
	}
	return records, nil
}

// FindByID scans every tenant; ids are not indexed. It returns nil, nil when no tenant matches.
func (r *TenantRepository) FindByID(ctx context.Context, id string) (*TenantRecord, error) {
	records, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Tenant.ID == id {
			return &records[i], nil
		}
	}
	return nil, nil
}

func (r *TenantRepository) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	rec, err := r.FindByID(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	return rec.Tenant, nil
}

// UpdateRecord rewrites the tenant stored under rec.Key, which may differ from TenantKey(Name).
func (r *TenantRepository) UpdateRecord(ctx context.Context, rec *TenantRecord, fn func(t *models.Tenant, exists bool) error) error {
	return store.UpdateJSON(ctx, r.store, rec.Key, fn)
}

func (r *TenantRepository) DeleteRecord(ctx context.Context, rec *TenantRecord) error {
	return r.store.Delete(ctx, rec.Key)
}

type UserRepository struct {
	store store.Store
}

func NewUserRepository(s store.Store) *UserRepository {
	return &UserRepository{store: s}
}

// GetByEmail returns nil, nil when the user does not exist.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	found, err := store.GetJSON(ctx, r.store, store.UserKey(email), &u)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Save(ctx context.Context, u *models.User) error {
	return store.SetJSON(ctx, r.store, store.UserKey(u.Email), u)
}

// Update applies fn to the stored user atomically. exists is false for a new record.
func (r *UserRepository) Update(ctx context.Context, email string, fn func(u *models.User, exists bool) error) error {
	return store.UpdateJSON(ctx, r.store, store.UserKey(email), fn)
}

func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	keys, err := r.store.ListKeys(ctx, store.UserPrefix)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, len(keys))
	for _, key := range keys {
		var u models.User
		found, err := store.GetJSON(ctx, r.store, key, &u)
		if err != nil {
			return nil, err
		}
		if found {
			users = append(users, &u)
		}
	}
	return users, nil
}
