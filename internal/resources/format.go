package resources

import (
	"strconv"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var tag = language.English

// Money renders an amount with digit grouping and its ISO currency code.
// Unknown codes are printed as given.
func Money(amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return message.NewPrinter(tag).Sprintf("%.2f", amount) + " " + code
	}
	scale, _ := currency.Standard.Rounding(unit)
	return unit.String() + " " + message.NewPrinter(tag).Sprint(number.Decimal(amount, number.Scale(scale)))
}

// Count renders an integer with digit grouping.
func Count(n int) string {
	return message.NewPrinter(tag).Sprintf("%d", n)
}

// Date renders t as YYYY-MM-DD, or "-" for the zero time.
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}

// DateTime renders t as YYYY-MM-DD HH:MM, or "-" for the zero time.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

// Int renders n without grouping.
func Int(n int) string { return strconv.Itoa(n) }
