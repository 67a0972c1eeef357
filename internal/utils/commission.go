package utils

import (
	"github.com/shopspring/decimal"

	"propdesk-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// ComputeCommission returns the commission, in minor currency units, that rule
// grants for an action with the given transaction amount.
//
// Fixed rules ignore the amount. Percentage rules need a non-negative amount;
// the exact product is clamped to the rule's optional bounds and then rounded
// half-up to a whole unit.
func ComputeCommission(rule *domain.CommissionRule, transactionAmount *int64) (int64, error) {
	if rule == nil {
		return 0, domain.NewError(domain.KindInvalidRule, "no rule supplied")
	}

	switch rule.CommissionType {
	case domain.CommissionTypeFixed:
		return rule.CommissionValue.Round(0).IntPart(), nil

	case domain.CommissionTypePercentage:
		if transactionAmount == nil {
			return 0, domain.ErrMissingAmount
		}
		if *transactionAmount < 0 {
			return 0, domain.NewError(domain.KindInvalidAmount, "transaction amount must not be negative")
		}

		raw := decimal.NewFromInt(*transactionAmount).Mul(rule.CommissionValue).Div(hundred)
		clamped := ClampAmount(raw, rule.MinAmount, rule.MaxAmount)
		return RoundHalfUp(clamped), nil
	}

	return 0, domain.NewError(domain.KindInvalidRule, "unsupported commission type: "+string(rule.CommissionType))
}

// ClampAmount bounds v to [min, max]; a nil bound is open.
func ClampAmount(v decimal.Decimal, min, max *int64) decimal.Decimal {
	if min != nil {
		if lo := decimal.NewFromInt(*min); v.LessThan(lo) {
			v = lo
		}
	}
	if max != nil {
		if hi := decimal.NewFromInt(*max); v.GreaterThan(hi) {
			v = hi
		}
	}
	return v
}

// RoundHalfUp rounds a non-negative value to the nearest whole unit, halves up.
func RoundHalfUp(v decimal.Decimal) int64 {
	return v.Add(decimal.New(5, -1)).Floor().IntPart()
}
