// Package strategy declares the only injected collaborator the core
// depends on: something that watches a rolling window of candles and
// reacts by creating or canceling orders. The core ships no production
// strategy, only the contract and a trivial example used by tests.
package strategy

import (
	"github.com/shopspring/decimal"

	"candlesim/internal/account"
	"candlesim/internal/candle"
	"candlesim/internal/exchange"
)

// Bot is the accessor surface a Strategy reads and writes through. The
// exchange implements it; a strategy never sees exchange internals
// directly.
type Bot interface {
	Balance() decimal.Decimal
	Positions() (long, short account.Position)
	CreateOrders(intents []exchange.OrderIntent)
	CancelOrders(intents []exchange.OrderIntent)
}

// Strategy is the one collaborator the driver calls out to. CallInterval
// is in seconds; Decide is invoked with the candles accumulated since
// the previous call and reacts by calling CreateOrders/CancelOrders on
// bot. A panicking Decide propagates to the driver's caller unchanged —
// the strategy is trusted (SPEC_FULL.md §7).
type Strategy interface {
	CallInterval() float64
	Decide(bot Bot, window []candle.Candle)
}
