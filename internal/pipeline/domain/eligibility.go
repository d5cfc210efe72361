package domain

import (
	"fmt"
	"math"
	"math/big"
)

const (
	// MaxRatioBps is the largest DBR or LTV value that can be stored (999.99%).
	MaxRatioBps int64 = 99999

	maxDBRBps int64 = 5000
	maxLTVBps int64 = 8000

	// maxLoanMonths is the repayment horizon used for the max loan estimate.
	maxLoanMonths int64 = 240
)

type EligibilityInput struct {
	MonthlySalaryCents          int64
	MonthlyLiabilitiesCents     *int64
	LoanAmountCents             *int64
	EstimatedPropertyValueCents *int64
}

type EligibilityResult struct {
	DBRBps             *int64
	LTVBps             *int64
	MaxLoanAmountCents *int64
	Status             EligibilityStatus
}

// CalculateEligibility derives debt burden ratio, loan to value and the
// maximum loan estimate. Ratios are rounded half-up to two decimal places and
// clamped to MaxRatioBps. A ratio that cannot be computed does not count
// against eligibility.
func CalculateEligibility(in EligibilityInput) EligibilityResult {
	var r EligibilityResult

	if in.MonthlySalaryCents > 0 && in.MonthlyLiabilitiesCents != nil {
		dbr := ratioBps(*in.MonthlyLiabilitiesCents, in.MonthlySalaryCents)
		r.DBRBps = &dbr
	}

	if in.LoanAmountCents != nil && in.EstimatedPropertyValueCents != nil && *in.EstimatedPropertyValueCents > 0 {
		ltv := ratioBps(*in.LoanAmountCents, *in.EstimatedPropertyValueCents)
		r.LTVBps = &ltv
	}

	if in.MonthlySalaryCents > 0 {
		var liabilities int64
		if in.MonthlyLiabilitiesCents != nil {
			liabilities = max(0, *in.MonthlyLiabilitiesCents)
		}
		maxLoan := maxLoanCents(in.MonthlySalaryCents, liabilities)
		r.MaxLoanAmountCents = &maxLoan
	}

	dbrOK := r.DBRBps == nil || *r.DBRBps <= maxDBRBps
	ltvOK := r.LTVBps == nil || *r.LTVBps <= maxLTVBps
	if dbrOK && ltvOK {
		r.Status = EligibilityEligible
	} else {
		r.Status = EligibilityNotEligible
	}
	return r
}

// maxLoanCents computes (salary * 0.5 - liabilities) * 240, floored at zero
// and saturating at math.MaxInt64. Both inputs must be non-negative.
func maxLoanCents(salary, liabilities int64) int64 {
	// 2*liabilities >= salary
	if liabilities >= salary/2+salary%2 {
		return 0
	}
	disposable := salary - 2*liabilities
	if disposable > math.MaxInt64/(maxLoanMonths/2) {
		return math.MaxInt64
	}
	return disposable * (maxLoanMonths / 2)
}

// ratioBps returns num/den*100 in basis points, rounded half-up and clamped
// to MaxRatioBps. The intermediate product can exceed int64.
func ratioBps(num, den int64) int64 {
	if num <= 0 {
		return 0
	}
	n := new(big.Int).Mul(big.NewInt(num), big.NewInt(20000))
	n.Add(n, big.NewInt(den))
	d := new(big.Int).Mul(big.NewInt(den), big.NewInt(2))
	n.Quo(n, d)
	if !n.IsInt64() || n.Int64() > MaxRatioBps {
		return MaxRatioBps
	}
	return n.Int64()
}

// FormatBps renders basis points as a fixed two-decimal percentage.
func FormatBps(bps int64) string {
	return formatFixed2(bps)
}

// FormatCents renders minor units as a fixed two-decimal amount.
func FormatCents(cents int64) string {
	return formatFixed2(cents)
}

func formatFixed2(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
