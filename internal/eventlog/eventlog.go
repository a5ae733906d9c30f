// Package eventlog gives concrete, deterministic form to the
// "observations are exposed via in-process callbacks" line in
// SPEC_FULL.md §6: it turns every order/account mutation into a
// structured zerolog event. Two runs with identical candles, config, and
// strategy must produce byte-identical event logs (SPEC_FULL.md §8); a
// Recorder writing to a fixed io.Writer with no wall-clock field is how
// that property is made testable.
package eventlog

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"candlesim/internal/account"
	"candlesim/internal/orderbook"
)

// Recorder is an account.Observer that writes one JSON line per
// mutation to w. It carries no timestamp field (determinism: the event
// log must not depend on wall-clock time).
type Recorder struct {
	log zerolog.Logger
}

// NewRecorder returns a Recorder writing to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{log: zerolog.New(w)}
}

func (r *Recorder) OnAccountUpdate(balance decimal.Decimal, long, short account.Position) {
	r.log.Info().
		Str("event", "account_update").
		Str("balance", balance.String()).
		Float64("long_qty", long.Qty).
		Float64("long_avg_price", long.AvgPrice).
		Float64("short_qty", short.Qty).
		Float64("short_avg_price", short.AvgPrice).
		Msg("account update")
}

func (r *Recorder) OnOrderUpdate(o orderbook.Order) {
	r.log.Info().
		Str("event", "order_update").
		Str("symbol", o.Symbol).
		Str("client_id", o.ClientID).
		Str("position_side", string(o.PositionSide)).
		Str("side", string(o.Side)).
		Str("type", string(o.Type)).
		Str("action", string(o.Action)).
		Float64("price", o.Price).
		Float64("qty", o.Qty).
		Int64("timestamp", o.Timestamp).
		Msg("order update")
}

// Dropped records a pending order that failed the admission margin check
// (SPEC_FULL.md §7's "admission rejection" path, where the spec leaves
// diagnostics optional).
func (r *Recorder) Dropped(o orderbook.Order) {
	r.log.Debug().
		Str("event", "order_dropped").
		Str("client_id", o.ClientID).
		Str("position_side", string(o.PositionSide)).
		Float64("price", o.Price).
		Float64("qty", o.Qty).
		Msg("pending order dropped: insufficient margin")
}
