package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// nonPriceRegexp strips currency symbols and separators from price text.
	nonPriceRegexp = regexp.MustCompile(`[^\d.]`)
	// ratingRegexp captures the first floating-point-looking substring.
	ratingRegexp = regexp.MustCompile(`(\d+\.?\d*)`)
	// digitsRegexp captures a run of digits.
	digitsRegexp = regexp.MustCompile(`(\d+)`)
)

// ParsePrice extracts a numeric price from text like "₹1,299". It returns
// nil — not zero — when no digits are present; the scoring engine treats the
// two differently.
func ParsePrice(text string) *float64 {
	if text == "" {
		return nil
	}
	cleaned := nonPriceRegexp.ReplaceAllString(text, "")
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseRating extracts a rating from text like "4.3 out of 5 stars".
func ParseRating(text string) *float64 {
	if text == "" {
		return nil
	}
	m := ratingRegexp.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseReviews extracts a review count from the parenthesized trailing
// segment of text like "4.3 (12,456)", stripping thousands separators.
func ParseReviews(text string) *int {
	if text == "" {
		return nil
	}
	seg := text
	if i := strings.LastIndex(seg, "("); i >= 0 {
		seg = seg[i+1:]
	}
	if i := strings.Index(seg, ")"); i >= 0 {
		seg = seg[:i]
	}
	seg = strings.NewReplacer(",", "", " ", "").Replace(seg)
	m := digitsRegexp.FindStringSubmatch(seg)
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &v
}
