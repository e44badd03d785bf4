package billing

import "math"

// VATParams is the tax configuration a document was issued under.
type VATParams struct {
	Enabled      bool
	Rate         float64 // percent, e.g. 19 for 19%
	MarginScheme bool
}

// Totals holds the computed amounts of a document, in cents.
type Totals struct {
	Net   int64
	VAT   int64
	Gross int64
}

// ComputeTotals splits the gross line amounts into net and VAT.
//
// Line amounts are tax-inclusive, so the gross is simply their sum. With VAT
// disabled (small-business regime) nothing is itemized: net equals gross. With
// VAT enabled the net is rounded to whole cents and the VAT is derived as the
// remainder, so Net+VAT==Gross always holds exactly. The margin-scheme flag
// only affects the legal notice on the rendered document, never the numbers.
func ComputeTotals(lines []LineItem, vat VATParams) Totals {
	var gross int64
	for _, line := range lines {
		gross += line.Amount
	}

	if !vat.Enabled {
		return Totals{Net: gross, VAT: 0, Gross: gross}
	}

	net := int64(math.Round(float64(gross) / (1 + vat.Rate/100)))

	return Totals{Net: net, VAT: gross - net, Gross: gross}
}
