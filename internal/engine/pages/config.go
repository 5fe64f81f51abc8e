package pages

import "time"

var SocialNetworks = []string{"facebook", "instagram", "youtube", "x", "tiktok"}

const MaxCampaignMessageLength = 40

// Config is the whole editable page of a tenant, stored under config:{tenantID}.
// Saves replace the document; there are no partial patches.
type Config struct {
	CompanyName string       `json:"companyName"`
	Logo        string       `json:"logo"`
	Description string       `json:"description"`
	Theme       Theme        `json:"theme"`
	SocialLinks []SocialLink `json:"socialLinks"`
	Links       []Link       `json:"links"`
	Campaigns   []Campaign   `json:"campaigns"`
}

type Theme struct {
	PrimaryColor       string `json:"primaryColor"`
	SecondaryColor     string `json:"secondaryColor"`
	PrimaryTextColor   string `json:"primaryTextColor"`
	SecondaryTextColor string `json:"secondaryTextColor"`
	BackgroundColor    string `json:"backgroundColor"`
	ContainerColor     string `json:"containerColor"`
}

type SocialLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Link struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	URL     string `json:"url"`
	Icon    string `json:"icon"`
	Visible bool   `json:"visible"`
}

// Campaign overrides which links are shown, and in what order, between StartDate and EndDate.
type Campaign struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Message     string    `json:"message"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Links       []string  `json:"links"`
}

// Covers reports whether t lies in [StartDate, EndDate], both ends inclusive.
func (c *Campaign) Covers(t time.Time) bool {
	return !t.Before(c.StartDate) && !t.After(c.EndDate)
}

func DefaultTheme() Theme {
	return Theme{
		PrimaryColor:       "#1f2937",
		SecondaryColor:     "#3b82f6",
		PrimaryTextColor:   "#ffffff",
		SecondaryTextColor: "#111827",
		BackgroundColor:    "#f3f4f6",
		ContainerColor:     "#ffffff",
	}
}

// NewConfig is the page a freshly created tenant starts with.
func NewConfig(companyName string) *Config {
	return &Config{
		CompanyName: companyName,
		Theme:       DefaultTheme(),
		SocialLinks: []SocialLink{},
		Links:       []Link{},
		Campaigns:   []Campaign{},
	}
}

func (c *Config) linkIndex(id string) int {
	for i := range c.Links {
		if c.Links[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Config) campaignIndex(id string) int {
	for i := range c.Campaigns {
		if c.Campaigns[i].ID == id {
			return i
		}
	}
	return -1
}
