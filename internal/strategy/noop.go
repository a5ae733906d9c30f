package strategy

import "candlesim/internal/candle"

// NoOp never creates or cancels an order. It exists so the driver and
// CLI have a concrete Strategy to exercise without committing to any
// particular trading logic — the real strategy is always supplied by
// the caller.
type NoOp struct {
	Interval float64
}

func (n NoOp) CallInterval() float64 { return n.Interval }

func (n NoOp) Decide(Bot, []candle.Candle) {}
