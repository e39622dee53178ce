package campaignmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatterLocales(t *testing.T) {
	br := NewFormatter("pt-BR")
	en := NewFormatter("en")

	assert.Equal(t, "3.500", br.Count(3500))
	assert.Equal(t, "3,500", en.Count(3500))
	assert.Equal(t, "R$ 350.00", br.Currency(350))
	assert.Equal(t, "4.57%", br.Percent(160.0/3500*100))
	assert.Equal(t, "4.6%", br.GaugePercent(160.0/3500*100))
	assert.Equal(t, "3.500", NewFormatter("not a locale!").Count(3500))
}

func TestZeroFormatterUsesDefaultLocale(t *testing.T) {
	var f Formatter
	assert.Equal(t, "3.500", f.Count(3500))

	d := BuildDashboard(sampleRows(), Filter{}, ClickSourceLinkClicks, Formatter{})
	assert.Equal(t, 3, d.TotalRows)
	assert.NotEmpty(t, d.Cards)
}

func TestBuildDashboardUsesAllRowsForTotals(t *testing.T) {
	rows := sampleRows()
	d := BuildDashboard(rows, Filter{Search: "onix"}, ClickSourceLinkClicks, NewFormatter(DefaultLocale))

	assert.Equal(t, 350.0, d.Totals.Spend)
	assert.Equal(t, 3, d.TotalRows)
	assert.Equal(t, 1, d.FilteredRows)
	require.Len(t, d.Groups, 1)
	assert.Equal(t, "B", d.Groups[0].Campaign)
	assert.Equal(t, "R$ 200.00", d.Groups[0].Display["amount_spent"])
	assert.Equal(t, "2.000", d.Groups[0].Display["reach"])

	cards := map[string]string{}
	for _, c := range d.Cards {
		cards[c.Key] = c.Display
	}
	assert.Equal(t, "R$ 350.00", cards["amount_spent"])
	assert.Equal(t, "3.500", cards["reach"])
	assert.Equal(t, "4.57%", cards["ctr"])

	require.Len(t, d.Gauges, 3)
	assert.Equal(t, "cpm", d.Gauges[0].Key)
	assert.Equal(t, "30.0", d.Gauges[0].Display)
	assert.Equal(t, "4.6%", d.Gauges[2].Display)
	assert.Len(t, d.Funnel, 4)
	assert.Equal(t, []string{"2025-03-01", "2025-03-02"}, d.Days)
}

func TestBuildDashboardEmpty(t *testing.T) {
	d := BuildDashboard(nil, Filter{}, ClickSourceLinkClicks, NewFormatter("en"))
	assert.NotNil(t, d.Groups)
	assert.NotNil(t, d.Leads)
	assert.Empty(t, d.Groups)
	assert.Equal(t, "R$ 0.00", d.Cards[0].Display)
}
