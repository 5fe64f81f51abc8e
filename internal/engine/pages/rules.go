package pages

import "time"

// SelectActiveCampaign returns the first campaign covering now, or nil.
// Campaigns never overlap when written through SaveCampaign, so first and only match coincide.
func SelectActiveCampaign(cfg *Config, now time.Time) *Campaign {
	for i := range cfg.Campaigns {
		if cfg.Campaigns[i].Covers(now) {
			return &cfg.Campaigns[i]
		}
	}
	return nil
}

// ValidateNoOverlap reports whether candidate can be stored next to campaigns.
// The test is strict: campaigns that only touch at an endpoint do not overlap.
// An existing campaign with the candidate's id is the one being edited and is ignored.
func ValidateNoOverlap(campaigns []Campaign, candidate Campaign) bool {
	for _, c := range campaigns {
		if c.ID == candidate.ID {
			continue
		}
		if candidate.StartDate.Before(c.EndDate) && candidate.EndDate.After(c.StartDate) {
			return false
		}
	}
	return true
}

// ResolveVisibleLinks returns the links shown on the public page at now.
// An active campaign dictates the set and order and ignores each link's Visible flag.
// Campaign ids that no longer resolve to a link are dropped.
func ResolveVisibleLinks(cfg *Config, now time.Time) []Link {
	out := make([]Link, 0, len(cfg.Links))

	if active := SelectActiveCampaign(cfg, now); active != nil {
		for _, id := range active.Links {
			if i := cfg.linkIndex(id); i >= 0 {
				out = append(out, cfg.Links[i])
			}
		}
		return out
	}

	for _, l := range cfg.Links {
		if l.Visible {
			out = append(out, l)
		}
	}
	return out
}

type Direction string

const (
	MoveUp   Direction = "up"
	MoveDown Direction = "down"
)

// MoveLink swaps the link with its neighbour. Moving past either end is a no-op.
// It returns false when id is unknown.
func MoveLink(cfg *Config, id string, dir Direction) bool {
	i := cfg.linkIndex(id)
	if i < 0 {
		return false
	}

	j := i - 1
	if dir == MoveDown {
		j = i + 1
	}
	if j < 0 || j >= len(cfg.Links) {
		return true
	}
	cfg.Links[i], cfg.Links[j] = cfg.Links[j], cfg.Links[i]
	return true
}
