package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// FareOption is one purchasable fare option as displayed on the page.
type FareOption struct {
	Family    string
	Cabin     string
	PriceText string
}

// FareQuote is the fare-class-to-price mapping for one row observation. The
// persisted format is an unordered map, so no option ordering survives past
// this point.
type FareQuote map[string]float64

// FareKey builds the composite fare-class key for a family/cabin pair.
func FareKey(family, cabin string) string {
	return fmt.Sprintf("%s (%s)", family, cabin)
}

// ParsePrice strips every non-digit, non-"." character from displayed price
// text and parses the remainder as a decimal number.
func ParsePrice(text string) (float64, error) {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return 0, &ParseError{Input: text, Reason: "no digits in price text"}
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &ParseError{Input: text, Reason: "not a decimal number"}
	}
	return price, nil
}

// BuildFareQuote converts the listed options into a fare quote. Options
// missing a family or cabin are skipped silently; options with malformed
// price text are dropped and reported so the caller can log them, but never
// abort the extraction. A later option with the same key overwrites the
// earlier one.
func BuildFareQuote(options []FareOption) (FareQuote, []error) {
	quote := make(FareQuote)
	var dropped []error

	for _, opt := range options {
		if opt.Family == "" || opt.Cabin == "" {
			continue
		}

		price, err := ParsePrice(opt.PriceText)
		if err != nil {
			dropped = append(dropped, fmt.Errorf("fare option %q: %w", FareKey(opt.Family, opt.Cabin), err))
			continue
		}

		quote[FareKey(opt.Family, opt.Cabin)] = price
	}

	return quote, dropped
}
