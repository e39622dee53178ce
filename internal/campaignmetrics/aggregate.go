package campaignmetrics

import (
	"math"
	"sort"
	"strings"
)

// UnknownCampaign labels rows without a campaign name in per-campaign charts.
const UnknownCampaign = "Unknown Campaign"

// ClickSource selects which column counts as "clicks".
type ClickSource string

const (
	ClickSourceLinkClicks       ClickSource = "link_clicks"
	ClickSourceLandingPageViews ClickSource = "landing_page_views"
)

// ParseClickSource falls back to link clicks for anything unrecognized.
func ParseClickSource(v string) ClickSource {
	if ClickSource(strings.TrimSpace(v)) == ClickSourceLandingPageViews {
		return ClickSourceLandingPageViews
	}
	return ClickSourceLinkClicks
}

func (c ClickSource) clicks(r Row) float64 {
	if c == ClickSourceLandingPageViews {
		return r.LandingPageViews
	}
	return r.LinkClicks
}

// Totals holds the sums and derived ratios over a row set.
type Totals struct {
	Rows             int     `json:"rows"`
	Spend            float64 `json:"amount_spent"`
	Reach            float64 `json:"reach"`
	Impressions      float64 `json:"impressions"`
	Clicks           float64 `json:"clicks"`
	LinkClicks       float64 `json:"link_clicks"`
	LandingPageViews float64 `json:"landing_page_views"`
	Leads            float64 `json:"leads"`
	Conversations    float64 `json:"conversations"`
	CTR              float64 `json:"ctr"`
	CPC              float64 `json:"cpc"`
	CPM              float64 `json:"cpm"`
	CPA              float64 `json:"cpa"`
}

// Summarize sums rows and derives CTR, CPC, CPM and CPA. A zero denominator
// always yields exactly 0.
func Summarize(rows []Row, src ClickSource) Totals {
	var t Totals
	var cpmSum float64
	for _, r := range rows {
		t.Spend += r.AmountSpent
		t.Reach += r.Reach
		t.Impressions += r.Impressions
		t.Clicks += src.clicks(r)
		t.LinkClicks += r.LinkClicks
		t.LandingPageViews += r.LandingPageViews
		t.Leads += r.Leads
		t.Conversations += r.Conversations
		cpmSum += r.CPM
	}
	t.Rows = len(rows)
	t.CTR = ratio(t.Clicks, t.Reach) * 100
	t.CPC = ratio(t.Spend, t.Clicks)
	t.CPM = ratio(cpmSum, float64(t.Rows))
	t.CPA = ratio(t.Spend, t.Leads)
	return t
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// CampaignGroup is the slice of rows sharing one campaign name.
type CampaignGroup struct {
	Campaign string `json:"campaign_name"`
	Totals   Totals `json:"totals"`
	Rows     []Row  `json:"rows"`
}

// GroupByCampaign partitions rows by campaign name, keeping the order in
// which each name first appears.
func GroupByCampaign(rows []Row, src ClickSource) []CampaignGroup {
	index := map[string]int{}
	var groups []CampaignGroup
	for _, r := range rows {
		i, ok := index[r.CampaignName]
		if !ok {
			i = len(groups)
			index[r.CampaignName] = i
			groups = append(groups, CampaignGroup{Campaign: r.CampaignName})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	for i := range groups {
		groups[i].Totals = Summarize(groups[i].Rows, src)
	}
	return groups
}

// Filter narrows rows by free text and exact day. Zero values match all.
type Filter struct {
	Search string `json:"search,omitempty"`
	Day    string `json:"day,omitempty"`
}

// IsZero reports whether the filter matches every row.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Search) == "" && f.Day == ""
}

// Matches reports whether r passes the filter. Search is a case-insensitive
// substring of the campaign, ad set or ad name.
func (f Filter) Matches(r Row) bool {
	if f.Day != "" && r.Day != f.Day {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.CampaignName), term) ||
		strings.Contains(strings.ToLower(r.AdSetName), term) ||
		strings.Contains(strings.ToLower(r.AdName), term)
}

// Apply returns the matching rows in their original order.
func (f Filter) Apply(rows []Row) []Row {
	if f.IsZero() {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// FunnelStep is one bar of the conversion funnel. Percent is relative to reach.
type FunnelStep struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
	// Currency marks a value expressed in R$ rather than a count.
	Currency bool `json:"currency"`
}

// Funnel builds reach → clicks → conversations → CPA. The last step shows
// the cost per lead while its share is leads over reach.
func Funnel(t Totals) []FunnelStep {
	return []FunnelStep{
		{Key: "reach", Label: "Alcance", Value: t.Reach, Percent: 100},
		{Key: "clicks", Label: "Cliques", Value: t.Clicks, Percent: ratio(t.Clicks, t.Reach) * 100},
		{Key: "conversations", Label: "Conversa Iniciada", Value: t.Conversations, Percent: ratio(t.Conversations, t.Reach) * 100},
		{Key: "cpa", Label: "CPA", Value: round2(t.CPA), Percent: ratio(t.Leads, t.Reach) * 100, Currency: true},
	}
}

// CampaignLeads is one bar of the leads-by-campaign chart.
type CampaignLeads struct {
	Campaign string  `json:"campaign_name"`
	Leads    float64 `json:"leads"`
}

// LeadsByCampaign sums leads per campaign in first-seen order.
func LeadsByCampaign(rows []Row) []CampaignLeads {
	index := map[string]int{}
	var out []CampaignLeads
	for _, r := range rows {
		name := r.CampaignName
		if name == "" {
			name = UnknownCampaign
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CampaignLeads{Campaign: name})
		}
		out[i].Leads += r.Leads
	}
	return out
}

// DistinctDays lists the unique non-empty days, sorted ascending.
func DistinctDays(rows []Row) []string {
	seen := map[string]struct{}{}
	days := []string{}
	for _, r := range rows {
		if r.Day == "" {
			continue
		}
		if _, ok := seen[r.Day]; ok {
			continue
		}
		seen[r.Day] = struct{}{}
		days = append(days, r.Day)
	}
	sort.Strings(days)
	return days
}

// GaugeRange is the dial scale of a cost gauge.
type GaugeRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	// Inverted means higher is better (the dial runs red to green).
	Inverted bool `json:"inverted"`
}

var (
	CPMGauge = GaugeRange{Min: 10, Max: 100}
	CPCGauge = GaugeRange{Min: 1, Max: 15}
	CTRGauge = GaugeRange{Min: 0, Max: 15, Inverted: true}
)

// Position places v on the dial as a fraction clamped to [0, 1].
func (g GaugeRange) Position(v float64) float64 {
	span := g.Max - g.Min
	if span <= 0 {
		return 0
	}
	p := (v - g.Min) / span
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
