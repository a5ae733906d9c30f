package account

import "candlesim/internal/orderbook"

// Position is one side (long or short) of an account's holdings for a
// symbol. A zero-size position always has AvgPrice == 0 and
// LiquidationPrice == 0.
type Position struct {
	Symbol           string
	Qty              float64
	AvgPrice         float64
	LiquidationPrice float64
	Leverage         float64
	PositionSide     orderbook.PositionSide
}

// Empty reports whether the position carries no size.
func (p Position) Empty() bool {
	return p.Qty == 0
}
