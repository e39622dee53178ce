package campaignmetrics

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	exportRowsSheet      = "Linhas"
	exportCampaignsSheet = "Campanhas"
	// ExportContentType is the MIME type of the generated workbook.
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportRowHeader = []any{
	"Nome da campanha",
	"Nome do conjunto de anúncios",
	"Nome do anúncio",
	"Dia",
	"Valor gasto (BRL)",
	"Alcance",
	"Impressões",
	"CPM (BRL)",
	"Cliques no link",
	"Visualizações de página de destino",
	"Conversas de mensagem iniciadas",
	"Leads",
}

// exportRowFields are the numeric columns of the rows sheet, after the four
// text columns.
var exportRowFields = []Field{
	FieldAmountSpent,
	FieldReach,
	FieldImpressions,
	FieldCPM,
	FieldLinkClicks,
	FieldLandingPageViews,
	FieldConversations,
	FieldLeads,
}

var exportCampaignHeader = []any{
	"Campanha",
	"Linhas",
	"Valor gasto (BRL)",
	"Alcance",
	"Impressões",
	"Cliques",
	"Leads",
	"CTR (%)",
	"CPC (BRL)",
	"CPM (BRL)",
	"CPA (BRL)",
}

// BuildWorkbook renders rows and their campaign totals as an XLSX file.
func BuildWorkbook(rows []Row, src ClickSource) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), exportCampaignsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := xl.NewSheet(exportRowsSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	header := exportCampaignHeader
	if err := xl.SetSheetRow(exportCampaignsSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, g := range GroupByCampaign(rows, src) {
		t := g.Totals
		record := []any{
			g.Campaign, t.Rows, round2(t.Spend), t.Reach, t.Impressions, t.Clicks, t.Leads,
			round2(t.CTR), round2(t.CPC), round2(t.CPM), round2(t.CPA),
		}
		if err := setRow(xl, exportCampaignsSheet, i+2, record); err != nil {
			return nil, err
		}
	}

	header = exportRowHeader
	if err := xl.SetSheetRow(exportRowsSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, r := range rows {
		record := make([]any, 0, len(exportRowHeader))
		record = append(record, r.CampaignName, r.AdSetName, r.AdName, r.Day)
		for _, f := range exportRowFields {
			record = append(record, r.Number(f))
		}
		if err := setRow(xl, exportRowsSheet, i+2, record); err != nil {
			return nil, err
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(xl *excelize.File, sheet string, row int, record []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return xl.SetSheetRow(sheet, cell, &record)
}
