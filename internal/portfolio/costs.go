// Package portfolio tracks cash and positions and prices the transaction
// costs of simulated trades.
package portfolio

import (
	"quantsim/internal/config"
	"quantsim/internal/types"
)

// CostModel prices a trade from its notional amount. All components are
// fractions of the amount except the commission floor and the impact
// threshold, which are absolute currency values.
type CostModel struct {
	CommissionRate  float64
	MinCommission   float64
	StampTaxRate    float64 // sell side only
	TransferFeeRate float64
	SlippageRate    float64
	ImpactFactor    float64
	ImpactThreshold float64
}

// NewCostModel builds a cost model from configuration.
func NewCostModel(cfg config.CostsConfig) CostModel {
	return CostModel{
		CommissionRate:  cfg.CommissionRate,
		MinCommission:   cfg.MinCommission,
		StampTaxRate:    cfg.StampTaxRate,
		TransferFeeRate: cfg.TransferFeeRate,
		SlippageRate:    cfg.SlippageRate,
		ImpactFactor:    cfg.ImpactFactor,
		ImpactThreshold: cfg.ImpactThreshold,
	}
}

// Cost returns the total transaction cost for a trade of the given side and
// notional amount.
func (m CostModel) Cost(action types.TradeAction, amount float64) float64 {
	commission := amount * m.CommissionRate
	if commission < m.MinCommission {
		commission = m.MinCommission
	}
	total := commission + amount*m.TransferFeeRate + amount*m.SlippageRate
	if action == types.ActionSell {
		total += amount * m.StampTaxRate
	}
	if amount > m.ImpactThreshold {
		total += amount * m.ImpactFactor * 1e-4
	}
	return total
}
