package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"biolink/internal/platform/models"
	"biolink/internal/platform/repositories"
	"biolink/internal/platform/store"
)

// ErrCollision means the normalised key already holds a different tenant.
var ErrCollision = errors.New("destination key holds another tenant")

type Options struct {
	// Apply performs the writes; without it every step is only logged.
	Apply bool
	// UppercaseIDs also normalises tenant ids, moving config and analytics records along.
	UppercaseIDs bool
}

type Summary struct {
	TenantsScanned int `json:"tenantsScanned"`
	TenantsMoved   int `json:"tenantsMoved"`
	ConfigsMoved   int `json:"configsMoved"`
	AnalyticsMoved int `json:"analyticsMoved"`
	UsersUpdated   int `json:"usersUpdated"`
	Conflicts      int `json:"conflicts"`
	Errors         int `json:"errors"`
}

// Migrator rewrites tenant keys to their uppercase slug and, optionally, tenant ids to uppercase.
//
// Each tenant is handled in two phases: dependents first (config, analytics, user memberships),
// then the tenant record itself. A crash between phases leaves the tenant under its old key and
// old id, so the next run recomputes the same plan and finishes the remaining moves.
type Migrator struct {
	store   store.Store
	tenants *repositories.TenantRepository
	users   *repositories.UserRepository
	log     zerolog.Logger
}

func New(s store.Store, log zerolog.Logger) *Migrator {
	return &Migrator{
		store:   s,
		tenants: repositories.NewTenantRepository(s),
		users:   repositories.NewUserRepository(s),
		log:     log.With().Str("component", "migration").Logger(),
	}
}

type plan struct {
	rec     repositories.TenantRecord
	oldKey  string
	newKey  string
	newName string
	oldID   string
	newID   string
}

func (p *plan) idChanged() bool { return p.oldID != p.newID }

func (p *plan) noop() bool {
	return p.oldKey == p.newKey && p.rec.Tenant.Name == p.newName && !p.idChanged()
}

// Run processes every tenant in key order. Only a failure to enumerate tenants is returned;
// per-tenant failures are logged and counted in the summary.
func (m *Migrator) Run(ctx context.Context, opts Options) (*Summary, error) {
	records, err := m.tenants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	sum := &Summary{}
	for _, rec := range records {
		sum.TenantsScanned++

		p := newPlan(rec, opts)
		if p.noop() {
			continue
		}

		err := m.migrateTenant(ctx, p, opts, sum)
		switch {
		case errors.Is(err, ErrCollision):
			sum.Conflicts++
			m.log.Warn().Str("from", p.oldKey).Str("to", p.newKey).Msg("Skipping tenant, destination key already taken")
		case err != nil:
			sum.Errors++
			m.log.Error().Err(err).Str("tenant_key", p.oldKey).Msg("Tenant migration failed")
		}
	}

	m.log.Info().
		Bool("applied", opts.Apply).
		Int("tenants_scanned", sum.TenantsScanned).
		Int("tenants_moved", sum.TenantsMoved).
		Int("configs_moved", sum.ConfigsMoved).
		Int("analytics_moved", sum.AnalyticsMoved).
		Int("users_updated", sum.UsersUpdated).
		Int("conflicts", sum.Conflicts).
		Int("errors", sum.Errors).
		Msg("Migration finished")

	return sum, nil
}

func newPlan(rec repositories.TenantRecord, opts Options) *plan {
	newName := strings.ToUpper(rec.Slug())
	p := &plan{
		rec:     rec,
		oldKey:  rec.Key,
		newKey:  store.TenantKey(newName),
		newName: newName,
		oldID:   rec.Tenant.ID,
		newID:   rec.Tenant.ID,
	}
	if opts.UppercaseIDs {
		p.newID = strings.ToUpper(rec.Tenant.ID)
	}
	return p
}

func (m *Migrator) migrateTenant(ctx context.Context, p *plan, opts Options, sum *Summary) error {
	log := m.log.With().
		Bool("dry_run", !opts.Apply).
		Str("tenant_id", p.oldID).
		Logger()

	resumed := false
	if p.oldKey != p.newKey {
		var dst models.Tenant
		found, err := store.GetJSON(ctx, m.store, p.newKey, &dst)
		if err != nil {
			return err
		}
		if found {
			// an earlier run wrote the destination but died before deleting the source
			if dst.ID != p.oldID && dst.ID != p.newID {
				return ErrCollision
			}
			resumed = true
		}
	}

	if p.idChanged() {
		moved, err := m.moveRecord(ctx, log, "config", store.ConfigKey(p.oldID), store.ConfigKey(p.newID), opts.Apply)
		if err != nil {
			return err
		}
		if moved {
			sum.ConfigsMoved++
		}

		moved, err = m.moveRecord(ctx, log, "analytics", store.AnalyticsKey(p.oldID), store.AnalyticsKey(p.newID), opts.Apply)
		if err != nil {
			return err
		}
		if moved {
			sum.AnalyticsMoved++
		}

		n, err := m.rewriteMemberships(ctx, log, p.oldID, p.newID, opts.Apply)
		sum.UsersUpdated += n
		if err != nil {
			return err
		}
	}

	log.Info().
		Str("from", p.oldKey).
		Str("to", p.newKey).
		Str("name", p.newName).
		Str("new_id", p.newID).
		Msg("Rewrite tenant")

	if opts.Apply {
		t := *p.rec.Tenant
		t.Name = p.newName
		t.ID = p.newID
		if !resumed {
			if err := store.SetJSON(ctx, m.store, p.newKey, &t); err != nil {
				return err
			}
		}
		if p.oldKey != p.newKey {
			if err := m.store.Delete(ctx, p.oldKey); err != nil {
				return err
			}
		}
	}
	sum.TenantsMoved++
	return nil
}

// moveRecord copies src to dst and then deletes src. It reports false when src is absent.
func (m *Migrator) moveRecord(ctx context.Context, log zerolog.Logger, kind, src, dst string, apply bool) (bool, error) {
	data, err := m.store.Get(ctx, src)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	log.Info().Str("kind", kind).Str("from", src).Str("to", dst).Msg("Move record")
	if !apply {
		return true, nil
	}

	if err := m.store.Set(ctx, dst, data); err != nil {
		return false, err
	}
	if err := m.store.Delete(ctx, src); err != nil {
		return false, err
	}
	return true, nil
}

// rewriteMemberships substitutes newID for oldID in every user's tenant list.
func (m *Migrator) rewriteMemberships(ctx context.Context, log zerolog.Logger, oldID, newID string, apply bool) (int, error) {
	users, err := m.users.List(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, u := range users {
		if !u.MemberOf(oldID) {
			continue
		}

		log.Info().Str("email", u.Email).Str("from", oldID).Str("to", newID).Msg("Rewrite membership")
		if apply {
			err := m.users.Update(ctx, u.Email, func(cur *models.User, exists bool) error {
				if !exists || !cur.MemberOf(oldID) {
					return store.ErrSkip
				}
				for i, id := range cur.Tenants {
					if id == oldID {
						cur.Tenants[i] = newID
					}
				}
				return nil
			})
			if err != nil {
				return updated, err
			}
		}
		updated++
	}
	return updated, nil
}
