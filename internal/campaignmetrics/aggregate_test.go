package campaignmetrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []Row {
	return []Row{
		{CampaignName: "A", AdName: "Civic", AmountSpent: 100, Reach: 1000, LinkClicks: 50, Leads: 5, CPM: 20, Day: "2025-03-02"},
		{CampaignName: "A", AdName: "Corolla", AmountSpent: 50, Reach: 500, LinkClicks: 10, Leads: 0, CPM: 30, Day: "2025-03-01"},
		{CampaignName: "B", AdName: "Onix", AmountSpent: 200, Reach: 2000, LinkClicks: 100, Leads: 10, CPM: 40, Day: "2025-03-02"},
	}
}

func TestSummarizeWorkedExample(t *testing.T) {
	totals := Summarize(sampleRows(), ClickSourceLinkClicks)

	assert.Equal(t, 350.0, totals.Spend)
	assert.Equal(t, 3500.0, totals.Reach)
	assert.InDelta(t, 4.5714, totals.CTR, 0.001)
	assert.InDelta(t, 350.0/160.0, totals.CPC, 1e-9)
	assert.Equal(t, 30.0, totals.CPM)
	assert.InDelta(t, 350.0/15.0, totals.CPA, 1e-9)
	assert.Equal(t, 3, totals.Rows)
}

func TestSummarizeZeroDenominators(t *testing.T) {
	totals := Summarize([]Row{{CampaignName: "A", AmountSpent: 10}}, ClickSourceLinkClicks)
	for name, v := range map[string]float64{"ctr": totals.CTR, "cpc": totals.CPC, "cpa": totals.CPA} {
		if v != 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s should be 0, got %v", name, v)
		}
	}

	empty := Summarize(nil, ClickSourceLinkClicks)
	assert.Equal(t, Totals{}, empty)
}

func TestSummarizeLandingPageViewsSource(t *testing.T) {
	rows := []Row{{Reach: 100, LinkClicks: 10, LandingPageViews: 4, AmountSpent: 8}}
	totals := Summarize(rows, ParseClickSource("landing_page_views"))
	assert.Equal(t, 4.0, totals.Clicks)
	assert.Equal(t, 2.0, totals.CPC)
	assert.Equal(t, 10.0, totals.LinkClicks)
	assert.Equal(t, ClickSourceLinkClicks, ParseClickSource("bogus"))
}

func TestGroupByCampaignIsPartition(t *testing.T) {
	rows := append(sampleRows(), Row{CampaignName: "A", AmountSpent: 1, Reach: 1})
	groups := GroupByCampaign(rows, ClickSourceLinkClicks)

	require.Len(t, groups, 2)
	assert.Equal(t, "A", groups[0].Campaign)
	assert.Equal(t, "B", groups[1].Campaign)
	assert.Equal(t, 151.0, groups[0].Totals.Spend)
	assert.Equal(t, 1501.0, groups[0].Totals.Reach)
	assert.Equal(t, 200.0, groups[1].Totals.Spend)

	global := Summarize(rows, ClickSourceLinkClicks)
	var count int
	var sum Totals
	for _, g := range groups {
		count += len(g.Rows)
		sum.Spend += g.Totals.Spend
		sum.Reach += g.Totals.Reach
		sum.Clicks += g.Totals.Clicks
		sum.Leads += g.Totals.Leads
	}
	assert.Equal(t, len(rows), count)
	assert.Equal(t, global.Spend, sum.Spend)
	assert.Equal(t, global.Reach, sum.Reach)
	assert.Equal(t, global.Clicks, sum.Clicks)
	assert.Equal(t, global.Leads, sum.Leads)
}

func TestFilterThenGroupMatchesGroupThenFilter(t *testing.T) {
	rows := sampleRows()
	filter := Filter{Search: "co", Day: ""}

	direct := GroupByCampaign(filter.Apply(rows), ClickSourceLinkClicks)

	var viaGroups []Row
	for _, g := range GroupByCampaign(rows, ClickSourceLinkClicks) {
		viaGroups = append(viaGroups, filter.Apply(g.Rows)...)
	}
	indirect := GroupByCampaign(viaGroups, ClickSourceLinkClicks)

	assert.Equal(t, direct, indirect)
	require.Len(t, direct, 1)
	assert.Equal(t, "Corolla", direct[0].Rows[0].AdName)
}

func TestFilterMatching(t *testing.T) {
	rows := sampleRows()
	assert.Len(t, Filter{}.Apply(rows), 3)
	assert.Len(t, Filter{Day: "2025-03-02"}.Apply(rows), 2)
	assert.Len(t, Filter{Search: "  ONIX "}.Apply(rows), 1)
	assert.Len(t, Filter{Search: "civic", Day: "2025-03-01"}.Apply(rows), 0)
	assert.True(t, Filter{Search: "  "}.IsZero())
}

func TestFunnel(t *testing.T) {
	totals := Summarize(sampleRows(), ClickSourceLinkClicks)
	totals.Conversations = 35
	steps := Funnel(totals)

	require.Len(t, steps, 4)
	assert.Equal(t, []string{"Alcance", "Cliques", "Conversa Iniciada", "CPA"},
		[]string{steps[0].Label, steps[1].Label, steps[2].Label, steps[3].Label})
	assert.Equal(t, 100.0, steps[0].Percent)
	assert.InDelta(t, 4.5714, steps[1].Percent, 0.001)
	assert.InDelta(t, 1.0, steps[2].Percent, 1e-9)
	assert.Equal(t, 23.33, steps[3].Value)
	assert.True(t, steps[3].Currency)
	assert.InDelta(t, 15.0/3500*100, steps[3].Percent, 1e-9)

	zero := Funnel(Totals{})
	for _, s := range zero[1:] {
		assert.Equal(t, 0.0, s.Percent)
	}
}

func TestLeadsByCampaignAndDays(t *testing.T) {
	rows := append(sampleRows(), Row{Leads: 2, Day: "2025-02-28"})
	leads := LeadsByCampaign(rows)
	assert.Equal(t, []CampaignLeads{
		{Campaign: "A", Leads: 5},
		{Campaign: "B", Leads: 10},
		{Campaign: UnknownCampaign, Leads: 2},
	}, leads)

	assert.Equal(t, []string{"2025-02-28", "2025-03-01", "2025-03-02"}, DistinctDays(rows))
	assert.Empty(t, DistinctDays(nil))
}

func TestGaugePosition(t *testing.T) {
	assert.Equal(t, 0.0, CPMGauge.Position(5))
	assert.Equal(t, 0.5, CPMGauge.Position(55))
	assert.Equal(t, 1.0, CPCGauge.Position(40))
	assert.InDelta(t, 0.3, CTRGauge.Position(4.5), 1e-9)
	assert.Equal(t, 0.0, GaugeRange{Min: 3, Max: 3}.Position(3))
}
