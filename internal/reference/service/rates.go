package service

import (
	"fmt"
	"strconv"
	"strings"
)

// eiborTerms maps a product's EIBOR type to the published term.
var eiborTerms = map[string]string{
	"EIBOR 1 MONTH": "1_month",
	"EIBOR 3 MONTH": "3_months",
	"EIBOR 6 MONTH": "6_months",
	"EIBOR 1 YEAR":  "1_year",
}

// parseMilli reads a decimal rate with up to three fractional digits as
// thousandths of a percent.
func parseMilli(s string) (int64, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 3 {
		return 0, fmt.Errorf("rate %q has more than three decimals", s)
	}
	frac += strings.Repeat("0", 3-len(frac))
	if whole == "" {
		whole = "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q: %w", s, err)
	}

	v := w*1000 + f
	if neg {
		v = -v
	}
	return v, nil
}

func formatMilli(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%03d", sign, v/1000, v%1000)
}

// effectiveRate returns nil when a variable product's term has no published rate.
func effectiveRate(rateType, fixedRate string, eibor *string, addition string) *string {
	if rateType == "fixed" {
		r := fixedRate
		return &r
	}
	if eibor == nil {
		return nil
	}
	base, err := parseMilli(*eibor)
	if err != nil {
		return nil
	}
	margin, err := parseMilli(addition)
	if err != nil {
		return nil
	}
	r := formatMilli(base + margin)
	return &r
}
