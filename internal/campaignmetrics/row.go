package campaignmetrics

// Field is a canonical column key of an imported metrics row.
type Field string

const (
	FieldCampaignName     Field = "campaign_name"
	FieldAdSetName        Field = "ad_set_name"
	FieldAdName           Field = "ad_name"
	FieldAmountSpent      Field = "amount_spent"
	FieldReach            Field = "reach"
	FieldImpressions      Field = "impressions"
	FieldCPM              Field = "cpm"
	FieldConversations    Field = "conversations"
	FieldLinkClicks       Field = "link_clicks"
	FieldLandingPageViews Field = "landing_page_views"
	FieldLeads            Field = "leads"
	FieldDay              Field = "day"
)

// NumericFields lists the fields coerced to non-negative numbers.
var NumericFields = []Field{
	FieldAmountSpent,
	FieldReach,
	FieldImpressions,
	FieldCPM,
	FieldConversations,
	FieldLinkClicks,
	FieldLandingPageViews,
	FieldLeads,
}

// IsNumeric reports whether values of f are coerced to numbers.
func (f Field) IsNumeric() bool {
	for _, n := range NumericFields {
		if n == f {
			return true
		}
	}
	return false
}

// Row is one imported line of an ads-manager export.
type Row struct {
	CampaignName     string            `json:"campaign_name"`
	AdSetName        string            `json:"ad_set_name"`
	AdName           string            `json:"ad_name"`
	AmountSpent      float64           `json:"amount_spent"`
	Reach            float64           `json:"reach"`
	Impressions      float64           `json:"impressions"`
	CPM              float64           `json:"cpm"`
	Conversations    float64           `json:"conversations"`
	LinkClicks       float64           `json:"link_clicks"`
	LandingPageViews float64           `json:"landing_page_views"`
	Leads            float64           `json:"leads"`
	Day              string            `json:"day"`
	Extra            map[string]string `json:"extra,omitempty"`
}

// Number returns the numeric value of f, or 0 for non-numeric fields.
func (r Row) Number(f Field) float64 {
	switch f {
	case FieldAmountSpent:
		return r.AmountSpent
	case FieldReach:
		return r.Reach
	case FieldImpressions:
		return r.Impressions
	case FieldCPM:
		return r.CPM
	case FieldConversations:
		return r.Conversations
	case FieldLinkClicks:
		return r.LinkClicks
	case FieldLandingPageViews:
		return r.LandingPageViews
	case FieldLeads:
		return r.Leads
	}
	return 0
}

func (r *Row) setNumber(f Field, v float64) {
	switch f {
	case FieldAmountSpent:
		r.AmountSpent = v
	case FieldReach:
		r.Reach = v
	case FieldImpressions:
		r.Impressions = v
	case FieldCPM:
		r.CPM = v
	case FieldConversations:
		r.Conversations = v
	case FieldLinkClicks:
		r.LinkClicks = v
	case FieldLandingPageViews:
		r.LandingPageViews = v
	case FieldLeads:
		r.Leads = v
	}
}

func (r *Row) setText(f Field, v string) {
	switch f {
	case FieldCampaignName:
		r.CampaignName = v
	case FieldAdSetName:
		r.AdSetName = v
	case FieldAdName:
		r.AdName = v
	case FieldDay:
		r.Day = v
	default:
		if r.Extra == nil {
			r.Extra = map[string]string{}
		}
		r.Extra[string(f)] = v
	}
}
