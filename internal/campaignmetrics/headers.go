package campaignmetrics

import "strings"

// HeaderAlias maps every known spelling of a column to its canonical field.
type HeaderAlias struct {
	Field    Field
	Variants []string
}

// HeaderAliases is the bilingual (English/Portuguese) header vocabulary of
// Meta Ads Manager exports. Adding a spelling is a data change here.
var HeaderAliases = []HeaderAlias{
	{FieldCampaignName, []string{"Campaign Name", "Nome da campanha"}},
	{FieldAdSetName, []string{"Ad Set Name", "Nome do conjunto de anúncios"}},
	{FieldAdName, []string{"Ad Name", "Nome do anúncio"}},
	{FieldAmountSpent, []string{"Amount Spent (BRL)", "Valor gasto (BRL)"}},
	{FieldReach, []string{"Reach", "Alcance"}},
	{FieldImpressions, []string{"Impressions", "Impressões"}},
	{FieldCPM, []string{"CPM (Cost per 1,000 Impressions) (BRL)", "CPM (Custo por 1.000 impressões) (BRL)"}},
	{FieldConversations, []string{"Messaging Conversations Started", "Conversas de mensagem iniciadas"}},
	{FieldLinkClicks, []string{"Link Clicks", "Cliques no link"}},
	{FieldLandingPageViews, []string{"Landing Page Views", "Visualizações de página de destino"}},
	{FieldLeads, []string{"Leads"}},
	{FieldDay, []string{"Day", "Dia"}},
}

var headerIndex = buildHeaderIndex(HeaderAliases)

func buildHeaderIndex(aliases []HeaderAlias) map[string]Field {
	idx := make(map[string]Field)
	for _, alias := range aliases {
		for _, v := range alias.Variants {
			idx[v] = alias.Field
		}
	}
	return idx
}

// ResolveHeader maps a raw header cell to its key. Unknown headers pass
// through as their trimmed text and report false.
func ResolveHeader(raw string) (Field, bool) {
	h := strings.TrimSpace(raw)
	if f, ok := headerIndex[h]; ok {
		return f, true
	}
	return Field(h), false
}
