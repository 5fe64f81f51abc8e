package pages

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"biolink/internal/platform/models"
	apperrors "biolink/internal/pkg/errors"
)

// TenantResolver finds the tenant behind a public slug.
type TenantResolver interface {
	LookupBySlug(ctx context.Context, slug string) (*models.Tenant, error)
}

// PublicPage is what a visitor sees at the tenant's public address.
type PublicPage struct {
	TenantID    string       `json:"-"`
	Slug        string       `json:"slug"`
	CompanyName string       `json:"companyName"`
	Logo        string       `json:"logo"`
	Description string       `json:"description"`
	Theme       Theme        `json:"theme"`
	SocialLinks []SocialLink `json:"socialLinks"`
	Links       []Link       `json:"links"`
	Banner      string       `json:"banner,omitempty"`
	CampaignID  string       `json:"campaignId,omitempty"`
}

// LinkPatch carries the fields of a link to change; nil fields are kept.
type LinkPatch struct {
	Text    *string `json:"text"`
	URL     *string `json:"url"`
	Icon    *string `json:"icon"`
	Visible *bool   `json:"visible"`
}

type Service struct {
	repo          *Repository
	tenants       TenantResolver
	publicBaseURL string
	now           func() time.Time
}

func NewService(repo *Repository, tenants TenantResolver, publicBaseURL string) *Service {
	return &Service{
		repo:          repo,
		tenants:       tenants,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

func configNotFound(tenantID string) error {
	return fmt.Errorf("%w: no page config for tenant %s", apperrors.ErrNotFound, tenantID)
}

func (s *Service) GetConfig(ctx context.Context, tenantID string) (*Config, error) {
	cfg, err := s.repo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, configNotFound(tenantID)
	}
	return cfg, nil
}

// ReplaceConfig overwrites the whole document. Only social networks and link urls are checked.
func (s *Service) ReplaceConfig(ctx context.Context, tenantID string, cfg *Config) error {
	if err := ValidateSocialLinks(cfg.SocialLinks); err != nil {
		return err
	}
	for i := range cfg.Links {
		if err := ValidateLink(&cfg.Links[i]); err != nil {
			return err
		}
	}
	if cfg.SocialLinks == nil {
		cfg.SocialLinks = []SocialLink{}
	}
	if cfg.Links == nil {
		cfg.Links = []Link{}
	}
	if cfg.Campaigns == nil {
		cfg.Campaigns = []Campaign{}
	}
	return s.repo.Save(ctx, tenantID, cfg)
}

// mutate applies fn to an existing config only.
func (s *Service) mutate(ctx context.Context, tenantID string, fn func(cfg *Config) error) error {
	return s.repo.Update(ctx, tenantID, func(cfg *Config, exists bool) error {
		if !exists {
			return configNotFound(tenantID)
		}
		return fn(cfg)
	})
}

func (s *Service) AddLink(ctx context.Context, tenantID string, link Link) (*Link, error) {
	if err := ValidateLink(&link); err != nil {
		return nil, err
	}
	link.ID = uuid.New().String()

	err := s.mutate(ctx, tenantID, func(cfg *Config) error {
		cfg.Links = append(cfg.Links, link)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *Service) UpdateLink(ctx context.Context, tenantID, linkID string, patch LinkPatch) (*Link, error) {
	var updated Link
	err := s.mutate(ctx, tenantID, func(cfg *Config) error {
		i := cfg.linkIndex(linkID)
		if i < 0 {
			return fmt.Errorf("%w: link %s", apperrors.ErrNotFound, linkID)
		}

		l := cfg.Links[i]
		if patch.Text != nil {
			l.Text = *patch.Text
		}
		if patch.URL != nil {
			l.URL = *patch.URL
		}
		if patch.Icon != nil {
			l.Icon = *patch.Icon
		}
		if patch.Visible != nil {
			l.Visible = *patch.Visible
		}
		if err := ValidateLink(&l); err != nil {
			return err
		}

		cfg.Links[i] = l
		updated = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteLink removes the link and every campaign reference to it.
func (s *Service) DeleteLink(ctx context.Context, tenantID, linkID string) error {
	return s.mutate(ctx, tenantID, func(cfg *Config) error {
		i := cfg.linkIndex(linkID)
		if i < 0 {
			return fmt.Errorf("%w: link %s", apperrors.ErrNotFound, linkID)
		}
		cfg.Links = slices.Delete(cfg.Links, i, i+1)

		for c := range cfg.Campaigns {
			cfg.Campaigns[c].Links = slices.DeleteFunc(cfg.Campaigns[c].Links, func(id string) bool {
				return id == linkID
			})
		}
		return nil
	})
}

func (s *Service) MoveLink(ctx context.Context, tenantID, linkID string, dir Direction) ([]Link, error) {
	if dir != MoveUp && dir != MoveDown {
		return nil, invalid("direction must be 'up' or 'down'")
	}

	var links []Link
	err := s.mutate(ctx, tenantID, func(cfg *Config) error {
		if !MoveLink(cfg, linkID, dir) {
			return fmt.Errorf("%w: link %s", apperrors.ErrNotFound, linkID)
		}
		links = cfg.Links
		return nil
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// SaveCampaign creates the campaign when it has no id, otherwise replaces the one with that id.
func (s *Service) SaveCampaign(ctx context.Context, tenantID string, c Campaign) (*Campaign, error) {
	editing := c.ID != ""
	if !editing {
		c.ID = uuid.New().String()
	}
	if c.Links == nil {
		c.Links = []string{}
	}

	err := s.mutate(ctx, tenantID, func(cfg *Config) error {
		i := cfg.campaignIndex(c.ID)
		if editing && i < 0 {
			return fmt.Errorf("%w: campaign %s", apperrors.ErrNotFound, c.ID)
		}
		if err := ValidateCampaign(cfg, &c); err != nil {
			return err
		}
		if !ValidateNoOverlap(cfg.Campaigns, c) {
			return fmt.Errorf("%w: campaign dates overlap an existing campaign", apperrors.ErrConflict)
		}

		if i >= 0 {
			cfg.Campaigns[i] = c
		} else {
			cfg.Campaigns = append(cfg.Campaigns, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) DeleteCampaign(ctx context.Context, tenantID, campaignID string) error {
	return s.mutate(ctx, tenantID, func(cfg *Config) error {
		i := cfg.campaignIndex(campaignID)
		if i < 0 {
			return fmt.Errorf("%w: campaign %s", apperrors.ErrNotFound, campaignID)
		}
		cfg.Campaigns = slices.Delete(cfg.Campaigns, i, i+1)
		return nil
	})
}

// PublicView renders the page for slug as of now.
func (s *Service) PublicView(ctx context.Context, slug string) (*PublicPage, error) {
	tenant, err := s.tenants.LookupBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	cfg, err := s.GetConfig(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	page := &PublicPage{
		TenantID:    tenant.ID,
		Slug:        tenant.Name,
		CompanyName: cfg.CompanyName,
		Logo:        cfg.Logo,
		Description: cfg.Description,
		Theme:       cfg.Theme,
		SocialLinks: cfg.SocialLinks,
		Links:       ResolveVisibleLinks(cfg, now),
	}
	if active := SelectActiveCampaign(cfg, now); active != nil {
		page.Banner = active.Message
		page.CampaignID = active.ID
	}
	return page, nil
}

// ResolveLink finds a link of the tenant behind slug, visible or not, for click redirects.
func (s *Service) ResolveLink(ctx context.Context, slug, linkID string) (*models.Tenant, *Link, error) {
	tenant, err := s.tenants.LookupBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := s.GetConfig(ctx, tenant.ID)
	if err != nil {
		return nil, nil, err
	}
	i := cfg.linkIndex(linkID)
	if i < 0 {
		return nil, nil, fmt.Errorf("%w: link %s", apperrors.ErrNotFound, linkID)
	}
	return tenant, &cfg.Links[i], nil
}

// QRCode encodes the public page address of slug.
func (s *Service) QRCode(ctx context.Context, slug string, size int) ([]byte, error) {
	tenant, err := s.tenants.LookupBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return GenerateQRCode(s.PageURL(tenant.Name), size)
}

func (s *Service) PageURL(slug string) string {
	return s.publicBaseURL + "/" + slug
}
