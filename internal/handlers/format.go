package handlers

import (
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/sbilibin2017/settle-sense/internal/models"
	"github.com/shopspring/decimal"
)

// amountFraction is the number of decimals amounts are shown with.
const amountFraction = 2

// Formatter renders amounts and dates the way the user configured them.
// Values are rounded here and nowhere else.
type Formatter struct {
	money      *money.Formatter
	dateLayout string
}

// NewFormatter builds a Formatter from the presentation settings.
func NewFormatter(s models.Settings) Formatter {
	return Formatter{
		money:      money.NewFormatter(amountFraction, ".", "", s.CurrencySymbol, "$1"),
		dateLayout: s.DateLayout(),
	}
}

// Amount renders the absolute value of d with the currency symbol, e.g. "$12.50".
// The sign is carried by the direction, not by the string.
func (f Formatter) Amount(d decimal.Decimal) string {
	return f.money.Format(minorUnits(d.Abs()))
}

// Signed renders d like Amount but keeps a leading minus for negative values.
func (f Formatter) Signed(d decimal.Decimal) string {
	return f.money.Format(minorUnits(d))
}

// Date renders a stored timestamp in the configured date format.
// Missing values become "N/A"; values that do not parse are returned unchanged.
func (f Formatter) Date(ts *string) string {
	if ts == nil || strings.TrimSpace(*ts) == "" {
		return "N/A"
	}
	t, ok := parseTimestamp(*ts)
	if !ok {
		return *ts
	}
	return t.Format(f.dateLayout)
}

func minorUnits(d decimal.Decimal) int64 {
	return d.Round(amountFraction).Shift(amountFraction).IntPart()
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{models.TimestampLayout, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// asFloat converts an aggregate for JSON payloads that expect plain numbers.
func asFloat(d decimal.Decimal) float64 {
	return d.Round(amountFraction).InexactFloat64()
}
