package campaignmetrics

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is used when no valid locale is configured.
const DefaultLocale = "pt-BR"

// Formatter renders dashboard numbers for one locale. The zero value formats
// for DefaultLocale.
type Formatter struct {
	printer *message.Printer
}

var defaultPrinter = message.NewPrinter(language.MustParse(DefaultLocale))

// NewFormatter returns a formatter for a BCP 47 tag, falling back to pt-BR.
func NewFormatter(locale string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return Formatter{printer: message.NewPrinter(tag)}
}

// Currency renders "R$ " plus the value fixed to two decimals.
func (f Formatter) Currency(v float64) string {
	return fmt.Sprintf("R$ %.2f", v)
}

// Count renders a count with the locale's thousands separator.
func (f Formatter) Count(v float64) string {
	printer := f.printer
	if printer == nil {
		printer = defaultPrinter
	}
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// Percent renders a percentage with two decimals, as on the summary cards.
func (f Formatter) Percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// GaugePercent renders a percentage with one decimal, as on the gauges.
func (f Formatter) GaugePercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Fixed renders v with the given number of decimals.
func (f Formatter) Fixed(v float64, decimals int) string {
	return fmt.Sprintf("%.*f", decimals, v)
}
