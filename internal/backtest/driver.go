// Package backtest implements the driver loop: it feeds closed candles to
// the simulated exchange one at a time, buffers a rolling window, and on
// a fixed cadence hands that window to the strategy. This mirrors the
// teacher's runBacktest loop (backtest.go) generalized from a walk-forward
// spot backtest to the candle/exchange-step contract of SPEC_FULL.md §4.5.
package backtest

import (
	"context"

	"candlesim/internal/candle"
	"candlesim/internal/exchange"
	"candlesim/internal/strategy"
)

// Stepper is the subset of Exchange the driver depends on, narrowed so
// tests can substitute a fake.
type Stepper interface {
	Step(c candle.Candle) bool
}

// Driver iterates a candle matrix against an Exchange and dispatches to
// a Strategy on its call interval.
type Driver struct {
	Exchange Stepper
	Strategy strategy.Strategy
	Bot      strategy.Bot

	// OnCandle, if set, is called after every successfully stepped
	// candle, so a caller can observe progress without the driver
	// depending on logging or metrics packages. The CLI leaves it unset.
	OnCandle func(c candle.Candle)
}

// New returns a Driver wired to ex (as both the stepper and the bot
// accessor a strategy reads/writes through) and s.
func New(ex *exchange.Exchange, s strategy.Strategy) *Driver {
	return &Driver{Exchange: ex, Strategy: s, Bot: ex}
}

// Run iterates candles in ascending time order, stepping the exchange
// and invoking the strategy on its call interval. It stops early if the
// exchange halts (liquidation) or ctx is canceled; it returns the index
// of the last candle it processed.
func (d *Driver) Run(ctx context.Context, candles []candle.Candle) int {
	if len(candles) == 0 {
		return -1
	}

	var window []candle.Candle
	lastUpdate := candles[0].OpenTime
	intervalMillis := int64(d.Strategy.CallInterval() * 1000)

	for i, c := range candles {
		select {
		case <-ctx.Done():
			return i - 1
		default:
		}

		if !d.Exchange.Step(c) {
			return i
		}
		if d.OnCandle != nil {
			d.OnCandle(c)
		}

		window = append(window, c)
		if c.OpenTime-lastUpdate >= intervalMillis {
			d.Strategy.Decide(d.Bot, window)
			window = nil
			lastUpdate = c.OpenTime
		}
	}
	return len(candles) - 1
}
