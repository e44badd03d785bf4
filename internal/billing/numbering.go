package billing

import (
	"fmt"
	"strconv"
	"strings"
)

// Document numbers are prefix + zero-padded sequence, e.g. "RE-0007".
const minSequenceDigits = 4

// FormatNumber renders a document number. Sequences beyond four digits are
// printed without further padding.
func FormatNumber(prefix string, seq int) string {
	return fmt.Sprintf("%s%0*d", prefix, minSequenceDigits, seq)
}

// trailingSequence extracts the digit run at the end of a document number.
// Returns 0 if the number does not end in digits.
func trailingSequence(number string) int {
	i := len(number)
	for i > 0 && number[i-1] >= '0' && number[i-1] <= '9' {
		i--
	}

	if i == len(number) {
		return 0
	}

	seq, err := strconv.Atoi(number[i:])
	if err != nil {
		// Digit run too long to fit an int; treat as no sequence.
		return 0
	}

	return seq
}

// SuggestNext reconciles the stored counter against the numbers actually in
// use. It scans the given numbers for the current prefix, takes the highest
// trailing sequence and suggests its successor. Only when no number matches
// does the stored counter apply. The result is advisory: uniqueness is
// enforced at write time, not here.
func SuggestNext(numbers []string, prefix string, counter int) int {
	detectedMax := 0

	for _, n := range numbers {
		if !strings.HasPrefix(n, prefix) {
			continue
		}

		if seq := trailingSequence(n); seq > detectedMax {
			detectedMax = seq
		}
	}

	if detectedMax > 0 {
		return detectedMax + 1
	}

	if counter < 1 {
		return 1
	}

	return counter
}

// SeriesConfig is the numbering series for one document type.
type SeriesConfig struct {
	Prefix     string
	NextNumber int
}

// StoreConfig is a store's billing configuration. Each document type carries
// its own independent prefix and counter.
type StoreConfig struct {
	Invoice  SeriesConfig
	Quote    SeriesConfig
	Purchase SeriesConfig

	VATEnabled bool
	VATRate    float64
}

// Series returns the numbering series for the given document type.
func (c *StoreConfig) Series(t DocType) SeriesConfig {
	switch t {
	case DocTypeQuote:
		return c.Quote
	case DocTypePurchase:
		return c.Purchase
	default:
		return c.Invoice
	}
}

func (c *StoreConfig) vat(marginScheme bool) VATParams {
	return VATParams{Enabled: c.VATEnabled, Rate: c.VATRate, MarginScheme: marginScheme}
}
