package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"biolink/internal/engine/pages"
	"biolink/internal/platform/metrics"
	apperrors "biolink/internal/pkg/errors"
	"biolink/internal/pkg/logger"
	"biolink/internal/pkg/parser"
)

// ConfigSource supplies the page config a report resolves campaigns and link texts against.
type ConfigSource interface {
	GetConfig(ctx context.Context, tenantID string) (*pages.Config, error)
}

// Query selects the events of a report. CampaignID, when set, overrides Start and End.
type Query struct {
	Start      time.Time
	End        time.Time
	CampaignID string
}

type Totals struct {
	Visits          int `json:"visits"`
	Clicks          int `json:"clicks"`
	UniqueClickIPs  int `json:"uniqueClickIps"`
	AbandonedVisits int `json:"abandonedVisits"`
}

type Report struct {
	From     time.Time      `json:"from"`
	To       time.Time      `json:"to"`
	Campaign string         `json:"campaign,omitempty"`
	Totals   Totals         `json:"totals"`
	Links    []LinkCount    `json:"links"`
	Daily    []DailyStat    `json:"daily"`
	Browsers map[string]int `json:"browsers"`
	OS       map[string]int `json:"os"`
	Devices  map[string]int `json:"devices"`
}

type Service struct {
	repo    *Repository
	configs ConfigSource
	log     zerolog.Logger
}

func NewService(repo *Repository, configs ConfigSource) *Service {
	return &Service{
		repo:    repo,
		configs: configs,
		log:     logger.WithComponent("analytics"),
	}
}

// RecordVisit appends a page view. Tenants without an analytics record are silently skipped.
func (s *Service) RecordVisit(ctx context.Context, tenantID string, who Visitor, now time.Time) error {
	ok, err := s.repo.AppendVisit(ctx, tenantID, Visit{Timestamp: now.UTC(), IP: who.IP, UserAgent: who.UserAgent})
	if err != nil {
		return err
	}
	if !ok {
		s.log.Debug().Str("tenant_id", tenantID).Msg("No analytics record, visit dropped")
		return nil
	}
	metrics.PageViewsTotal.WithLabelValues(tenantID).Inc()
	return nil
}

func (s *Service) RecordClick(ctx context.Context, tenantID, linkID string, who Visitor, now time.Time) error {
	ok, err := s.repo.AppendClick(ctx, tenantID, Click{Timestamp: now.UTC(), LinkID: linkID, IP: who.IP, UserAgent: who.UserAgent})
	if err != nil {
		return err
	}
	if !ok {
		s.log.Debug().Str("tenant_id", tenantID).Msg("No analytics record, click dropped")
		return nil
	}
	metrics.LinkClicksTotal.WithLabelValues(tenantID).Inc()
	return nil
}

func (s *Service) Report(ctx context.Context, tenantID string, q Query) (*Report, error) {
	rec, err := s.repo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: no analytics for tenant %s", apperrors.ErrNotFound, tenantID)
	}

	cfg, err := s.configs.GetConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	visits, clicks := rec.Visits, rec.Clicks

	if q.CampaignID != "" {
		var campaign *pages.Campaign
		for i := range cfg.Campaigns {
			if cfg.Campaigns[i].ID == q.CampaignID {
				campaign = &cfg.Campaigns[i]
				break
			}
		}
		if campaign == nil {
			return nil, fmt.Errorf("%w: campaign %s", apperrors.ErrNotFound, q.CampaignID)
		}
		visits = FilterByCampaign(visits, campaign.StartDate, campaign.EndDate)
		clicks = FilterByCampaign(clicks, campaign.StartDate, campaign.EndDate)
		report.Campaign = campaign.ID
		report.From, report.To = campaign.StartDate, campaign.EndDate
	} else {
		visits = FilterByDateWindow(visits, q.Start, q.End)
		clicks = FilterByDateWindow(clicks, q.Start, q.End)
		report.From, report.To = q.Start, q.End
	}

	report.Totals = Totals{
		Visits:          len(visits),
		Clicks:          len(clicks),
		UniqueClickIPs:  DistinctClickIPs(clicks),
		AbandonedVisits: AbandonedVisits(visits, clicks),
	}

	texts := make(map[string]string, len(cfg.Links))
	for _, l := range cfg.Links {
		texts[l.ID] = l.Text
	}
	report.Links = RankLinks(clicks)
	for i := range report.Links {
		report.Links[i].Text = texts[report.Links[i].LinkID]
	}

	report.Daily = DailySeries(visits, clicks)

	report.Browsers = make(map[string]int)
	report.OS = make(map[string]int)
	report.Devices = make(map[string]int)
	for _, v := range visits {
		ua := parser.Parse(v.UserAgent)
		report.Browsers[ua.Browser]++
		report.OS[ua.OS]++
		report.Devices[ua.Device]++
	}

	return report, nil
}
