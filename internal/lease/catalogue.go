package lease

import (
	"fmt"
	"strings"
)

// ReturnLocation is the service center handling returns.
const ReturnLocation = "Tesla Palo Alto"

// ReturnDates are the bookable return dates.
var ReturnDates = []string{"Jun 14", "Jun 15", "Jun 16", "Jun 17"}

// Offer is a retention offer card.
type Offer struct {
	Option   RetentionOption
	Title    string
	Subtitle string
	Tag      string
}

// OfferCatalogue is the retention offer catalogue, in display order.
var OfferCatalogue = []Offer{
	{Option: OptionNewLease, Title: "Start a New Lease", Subtitle: "Model Y from $399/mo", Tag: "Loyalty Credit: $500"},
	{Option: OptionBuy, Title: "Purchase Vehicle", Subtitle: "Buyout Price: $28,450", Tag: "0.99% APR Available"},
	{Option: OptionReturn, Title: "Return Vehicle", Subtitle: "No loyalty credit applied"},
}

// BillLine is one row of the final bill, in cents.
type BillLine struct {
	Label  string
	Cents  int
	Credit bool
}

// BillLines is the itemized final bill.
var BillLines = []BillLine{
	{Label: "Disposition Fee", Cents: 35000},
	{Label: "Exterior (Inspection ID #829)", Cents: 15000},
	{Label: "Tires (Excess Wear)", Cents: 20000},
	{Label: "Mileage Overage (0 mi)", Cents: 0},
	{Label: "Loyalty Credit Applied", Cents: -25000, Credit: true},
}

// BillTotal sums BillLines.
func BillTotal() int {
	total := 0
	for _, l := range BillLines {
		total += l.Cents
	}
	return total
}

// EstimateLines are the charges shown at the end of the inspection walkthrough.
var EstimateLines = []BillLine{
	{Label: "Exterior (Scratches)", Cents: 15000},
	{Label: "Tires (Excess Wear)", Cents: 20000},
	{Label: "Mileage Overage", Cents: 0},
}

// EstimateRange is the low/high estimate in cents.
var EstimateRange = [2]int{35000, 65000}

// PaymentPayee receives the final payment.
const PaymentPayee = "Tesla Finance"

// PaymentPrompt is the question put to the Confirmer before paying.
func PaymentPrompt() string {
	return fmt.Sprintf("Authorize payment of %s to %s?", FormatCents(BillTotal()), PaymentPayee)
}

// FormatCents renders cents as dollars with thousands separators,
// e.g. -25000 -> "-$250.00".
func FormatCents(cents int) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, groupThousands(cents/100), cents%100)
}

// FormatMiles renders miles with thousands separators.
func FormatMiles(miles int) string {
	if miles < 0 {
		return "-" + groupThousands(-miles)
	}
	return groupThousands(miles)
}

func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
