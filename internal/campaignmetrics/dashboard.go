package campaignmetrics

// Card is one headline number of the overview.
type Card struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// Gauge is one cost dial of the overview.
type Gauge struct {
	Key      string     `json:"key"`
	Label    string     `json:"label"`
	Subtitle string     `json:"subtitle"`
	Unit     string     `json:"unit"`
	Value    float64    `json:"value"`
	Display  string     `json:"display"`
	Range    GaugeRange `json:"range"`
	Position float64    `json:"position"`
}

// GroupView is a campaign group ready for the expandable details table.
type GroupView struct {
	CampaignGroup
	Display map[string]string `json:"display"`
}

// Dashboard is everything the metrics page renders.
type Dashboard struct {
	Filter      Filter          `json:"filter"`
	ClickSource ClickSource     `json:"click_source"`
	Totals      Totals          `json:"totals"`
	Cards       []Card          `json:"cards"`
	Gauges      []Gauge         `json:"gauges"`
	Funnel      []FunnelStep    `json:"funnel"`
	Leads       []CampaignLeads `json:"leads_by_campaign"`
	Days        []string        `json:"days"`
	Groups      []GroupView     `json:"groups"`
	// FilteredRows counts rows that passed the filter; Totals covers all rows.
	FilteredRows int `json:"filtered_rows"`
	TotalRows    int `json:"total_rows"`
}

// BuildDashboard assembles the overview from all rows and the details table
// from the filtered rows.
func BuildDashboard(rows []Row, filter Filter, src ClickSource, f Formatter) Dashboard {
	totals := Summarize(rows, src)
	filtered := filter.Apply(rows)

	d := Dashboard{
		Filter:       filter,
		ClickSource:  src,
		Totals:       totals,
		Cards:        buildCards(totals, f),
		Gauges:       buildGauges(totals, f),
		Funnel:       Funnel(totals),
		Leads:        LeadsByCampaign(rows),
		Days:         DistinctDays(rows),
		FilteredRows: len(filtered),
		TotalRows:    len(rows),
		Groups:       []GroupView{},
	}
	if d.Leads == nil {
		d.Leads = []CampaignLeads{}
	}
	for _, g := range GroupByCampaign(filtered, src) {
		d.Groups = append(d.Groups, GroupView{CampaignGroup: g, Display: groupDisplay(g.Totals, f)})
	}
	return d
}

func buildCards(t Totals, f Formatter) []Card {
	return []Card{
		{Key: "amount_spent", Label: "Investimento Total", Value: t.Spend, Display: f.Currency(t.Spend)},
		{Key: "reach", Label: "Alcance", Value: t.Reach, Display: f.Count(t.Reach)},
		{Key: "clicks", Label: "Cliques", Value: t.Clicks, Display: f.Count(t.Clicks)},
		{Key: "leads", Label: "Leads", Value: t.Leads, Display: f.Count(t.Leads)},
		{Key: "ctr", Label: "CTR", Value: t.CTR, Display: f.Percent(t.CTR)},
		{Key: "cpc", Label: "CPC", Value: t.CPC, Display: f.Currency(t.CPC)},
	}
}

func buildGauges(t Totals, f Formatter) []Gauge {
	return []Gauge{
		{
			Key: "cpm", Label: "CPM", Subtitle: "Custo por mil impressões", Unit: "R$",
			Value: t.CPM, Display: f.Fixed(t.CPM, 1), Range: CPMGauge, Position: CPMGauge.Position(t.CPM),
		},
		{
			Key: "cpc", Label: "CPC", Subtitle: "Custo por clique", Unit: "R$",
			Value: t.CPC, Display: f.Fixed(t.CPC, 2), Range: CPCGauge, Position: CPCGauge.Position(t.CPC),
		},
		{
			Key: "ctr", Label: "CTR", Subtitle: "Taxa de cliques", Unit: "%",
			Value: t.CTR, Display: f.GaugePercent(t.CTR), Range: CTRGauge, Position: CTRGauge.Position(t.CTR),
		},
	}
}

func groupDisplay(t Totals, f Formatter) map[string]string {
	return map[string]string{
		"amount_spent":       f.Currency(t.Spend),
		"reach":              f.Count(t.Reach),
		"impressions":        f.Count(t.Impressions),
		"conversations":      f.Count(t.Conversations),
		"link_clicks":        f.Count(t.LinkClicks),
		"landing_page_views": f.Count(t.LandingPageViews),
		"leads":              f.Count(t.Leads),
	}
}
