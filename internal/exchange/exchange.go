// Package exchange implements the per-candle state machine: liquidation
// detection, maker/taker matching against the just-closed candle, and
// latency-gated admission of pending orders. This is the hardest
// subsystem in the simulator (SPEC_FULL.md §4.4) and the only one
// allowed to mutate positions.
package exchange

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"candlesim/internal/account"
	"candlesim/internal/candle"
	"candlesim/internal/kernel"
	"candlesim/internal/orderbook"
)

// Exchange is the simulated venue: an account, its open order book, and
// a latency-gated pending queue, all driven one candle at a time.
type Exchange struct {
	cfg     Config
	acct    *account.Account
	open    *orderbook.Book
	pending *orderbook.Book

	currentTimestamp int64
	onDropped        func(o orderbook.Order)
}

// OnDropped registers a callback invoked whenever a pending order fails
// the admission margin check and is silently dropped (SPEC_FULL.md §7).
// Optional: by default dropped orders are simply discarded.
func (e *Exchange) OnDropped(fn func(o orderbook.Order)) {
	e.onDropped = fn
}

// New returns an Exchange wired to acct's book as the open book, with an
// empty pending queue.
func New(cfg Config, acct *account.Account, openBook *orderbook.Book) *Exchange {
	return &Exchange{cfg: cfg, acct: acct, open: openBook, pending: orderbook.NewBook()}
}

// Account returns the underlying account, the accessor a Strategy/Bot
// implementation reads balance and positions from.
func (e *Exchange) Account() *account.Account {
	return e.acct
}

// Balance returns the account's current balance, satisfying the
// strategy.Bot accessor interface.
func (e *Exchange) Balance() decimal.Decimal {
	return e.acct.Balance()
}

// Positions returns the account's current long and short positions,
// satisfying the strategy.Bot accessor interface.
func (e *Exchange) Positions() (long, short account.Position) {
	return e.acct.Positions()
}

// CreateOrders stamps each intent with the symbol, the current
// timestamp, and action NEW, assigns a fresh client id if none was
// given, and enqueues it in the latency-gated pending queue.
func (e *Exchange) CreateOrders(intents []OrderIntent) {
	for _, it := range intents {
		o := e.toOrder(it, orderbook.New)
		if o.PositionSide == orderbook.Long {
			e.pending.AppendLong(&o)
		} else {
			e.pending.AppendShort(&o)
		}
	}
}

// CancelOrders stamps each intent with action CANCELED and enqueues it
// in the same pending queue; admission (Step, phase d) is responsible
// for translating a CANCELED pending order into removal from the open
// book without a margin check (SPEC_FULL.md §9).
func (e *Exchange) CancelOrders(intents []OrderIntent) {
	for _, it := range intents {
		o := e.toOrder(it, orderbook.Canceled)
		if o.PositionSide == orderbook.Long {
			e.pending.AppendLong(&o)
		} else {
			e.pending.AppendShort(&o)
		}
	}
}

func (e *Exchange) toOrder(it OrderIntent, action orderbook.Action) orderbook.Order {
	clientID := it.ClientID
	if clientID == "" {
		clientID = uuid.NewString()
	}
	return orderbook.Order{
		Symbol:       e.cfg.Symbol,
		ClientID:     clientID,
		PositionSide: it.PositionSide,
		Side:         it.Side,
		Type:         it.Type,
		Price:        it.Price,
		StopPrice:    it.StopPrice,
		Qty:          it.Qty,
		Action:       action,
		Timestamp:    e.currentTimestamp,
	}
}

// Step advances the exchange by one closed candle: liquidation check,
// long-book matching, short-book matching, pending-order admission, in
// that fixed order. It returns false exactly when a liquidation fired,
// signaling the driver to halt.
func (e *Exchange) Step(c candle.Candle) bool {
	e.currentTimestamp = c.OpenTime

	if !e.checkLiquidation(c) {
		return false
	}

	e.matchLongBook(c)
	e.matchShortBook(c)
	e.admitPending(c)
	return true
}

func (e *Exchange) balanceFloat() float64 {
	f, _ := e.acct.Balance().Float64()
	return f
}

// checkLiquidation implements step (a). It returns false (halt) iff
// available margin at the candle close is non-positive, after emitting
// synthetic LIQUIDATION orders and zeroing every non-empty side.
func (e *Exchange) checkLiquidation(c candle.Candle) bool {
	long, short := e.acct.Positions()
	am := kernel.CalculateAvailableMargin(e.balanceFloat(), long.Qty, long.AvgPrice, short.Qty, short.AvgPrice, c.Close, false, 1, e.cfg.Leverage)
	if am > 0 {
		return true
	}

	if !long.Empty() {
		e.acct.HandleOrderUpdate(orderbook.Order{
			Symbol: e.cfg.Symbol, ClientID: uuid.NewString(), PositionSide: orderbook.Long,
			Side: orderbook.Sell, Type: orderbook.CalculatedType, Price: c.Close, Qty: long.Qty,
			Action: orderbook.Liquidation, Timestamp: e.currentTimestamp,
		})
		_, short = e.acct.Positions()
		e.acct.HandleAccountUpdate(decimal.Zero, account.Position{Symbol: e.cfg.Symbol, PositionSide: orderbook.Long}, short)
	}

	long, short = e.acct.Positions()
	if !short.Empty() {
		e.acct.HandleOrderUpdate(orderbook.Order{
			Symbol: e.cfg.Symbol, ClientID: uuid.NewString(), PositionSide: orderbook.Short,
			Side: orderbook.Sell, Type: orderbook.CalculatedType, Price: c.Close, Qty: short.Qty,
			Action: orderbook.Liquidation, Timestamp: e.currentTimestamp,
		})
		long, _ = e.acct.Positions()
		e.acct.HandleAccountUpdate(decimal.Zero, long, account.Position{Symbol: e.cfg.Symbol, PositionSide: orderbook.Short})
	}

	return false
}

// triggered reports whether order fires against the just-closed candle c,
// given the directional rule for the book it lives on. isLongBook
// selects between the (b) and (c) trigger-direction mirror from
// SPEC_FULL.md §4.4.
func triggered(o *orderbook.Order, c candle.Candle, isLongBook bool) bool {
	if o.Type == orderbook.Market {
		return true
	}
	if isLongBook {
		if c.Low < o.Price && ((o.Type == orderbook.Limit && o.Side == orderbook.Buy) || o.Type == orderbook.StopLoss) {
			return true
		}
		return c.High > o.Price && ((o.Type == orderbook.Limit && o.Side == orderbook.Sell) || o.Type == orderbook.TakeProfit)
	}
	if c.High > o.Price && ((o.Type == orderbook.Limit && o.Side == orderbook.Buy) || o.Type == orderbook.StopLoss) {
		return true
	}
	return c.Low < o.Price && ((o.Type == orderbook.Limit && o.Side == orderbook.Sell) || o.Type == orderbook.TakeProfit)
}

// matchLongBook implements step (b).
func (e *Exchange) matchLongBook(c candle.Candle) {
	for _, o := range append([]*orderbook.Order(nil), e.open.Long()...) {
		fires := triggered(o, c, true)
		if !fires {
			continue
		}
		working := o.Copy()
		if o.Type == orderbook.Market {
			working.Price = kernel.RoundDown(c.Mean(), e.cfg.PriceStep)
		}

		fillQty := c.Volume
		if c.Volume >= o.Qty {
			working.Action = orderbook.Filled
			fillQty = o.Qty
		} else {
			working.Action = orderbook.PartiallyFilled
			working.Qty = o.Qty - c.Volume
		}

		fee := -kernel.QuantityToCost(fillQty, working.Price, false, 1) * e.feeRate(o.Type)

		long, short := e.acct.Positions()
		var pnl, deltaQty float64
		if o.Side == orderbook.Sell {
			pnl = kernel.CalculateLongPnL(long.AvgPrice, working.Price, fillQty, false, 1)
			deltaQty = -fillQty
		} else {
			pnl = 0
			deltaQty = fillQty
		}

		newQty, newPrice := kernel.CalculateNewPositionSizePositionPrice(long.Qty, long.AvgPrice, deltaQty, working.Price, e.cfg.QuantityStep)
		newLong := account.Position{Symbol: e.cfg.Symbol, Qty: newQty, AvgPrice: newPrice, Leverage: e.cfg.Leverage, PositionSide: orderbook.Long}
		newBalance := e.balanceFloat() + fee + pnl
		if !newLong.Empty() {
			newLong.LiquidationPrice = kernel.CalculateBankruptcyPrice(newBalance, newLong.Qty, newLong.AvgPrice, short.Qty, short.AvgPrice, false, 1)
		}

		e.acct.HandleAccountUpdate(decimal.NewFromFloat(newBalance), newLong, short)
		e.acct.HandleOrderUpdate(working)
	}
}

// matchShortBook implements step (c), the mirror of (b) with inverted
// trigger directions and SHORT-side position semantics (SPEC_FULL.md
// §10.2): SELL increases short size, BUY reduces it.
func (e *Exchange) matchShortBook(c candle.Candle) {
	for _, o := range append([]*orderbook.Order(nil), e.open.Short()...) {
		fires := triggered(o, c, false)
		if !fires {
			continue
		}
		working := o.Copy()
		if o.Type == orderbook.Market {
			working.Price = kernel.RoundDown(c.Mean(), e.cfg.PriceStep)
		}

		fillQty := c.Volume
		if c.Volume >= o.Qty {
			working.Action = orderbook.Filled
			fillQty = o.Qty
		} else {
			working.Action = orderbook.PartiallyFilled
			working.Qty = o.Qty - c.Volume
		}

		fee := -kernel.QuantityToCost(fillQty, working.Price, false, 1) * e.feeRate(o.Type)

		long, short := e.acct.Positions()
		var pnl, deltaQty float64
		if o.Side == orderbook.Buy {
			pnl = kernel.CalculateShortPnL(short.AvgPrice, working.Price, fillQty, false, 1)
			deltaQty = -fillQty
		} else {
			pnl = 0
			deltaQty = fillQty
		}

		newQty, newPrice := kernel.CalculateNewPositionSizePositionPrice(short.Qty, short.AvgPrice, deltaQty, working.Price, e.cfg.QuantityStep)
		newShort := account.Position{Symbol: e.cfg.Symbol, Qty: newQty, AvgPrice: newPrice, Leverage: e.cfg.Leverage, PositionSide: orderbook.Short}
		newBalance := e.balanceFloat() + fee + pnl
		if !newShort.Empty() {
			newShort.LiquidationPrice = kernel.CalculateBankruptcyPrice(newBalance, long.Qty, long.AvgPrice, newShort.Qty, newShort.AvgPrice, false, 1)
		}

		e.acct.HandleAccountUpdate(decimal.NewFromFloat(newBalance), long, newShort)
		e.acct.HandleOrderUpdate(working)
	}
}

func (e *Exchange) feeRate(t orderbook.OrderType) float64 {
	if t == orderbook.Market {
		return absf(e.cfg.TakerFee)
	}
	return absf(e.cfg.MakerFee)
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// admitPending implements step (d): any pending order whose latency has
// expired is popped from the queue; a CANCELED pending order removes its
// matching open order unconditionally, a NEW pending order is admitted
// into the open book iff its notional clears the available-margin check,
// and silently dropped otherwise.
func (e *Exchange) admitPending(c candle.Candle) {
	e.admitPendingSide(c, e.pending.Long(), orderbook.Long)
	e.admitPendingSide(c, e.pending.Short(), orderbook.Short)
}

func (e *Exchange) admitPendingSide(c candle.Candle, side []*orderbook.Order, positionSide orderbook.PositionSide) {
	var toRemove []*orderbook.Order
	for _, o := range side {
		if float64(o.Timestamp)+e.cfg.LatencyMillis > float64(e.currentTimestamp) {
			continue
		}
		toRemove = append(toRemove, o)

		if o.Action == orderbook.Canceled {
			e.acct.HandleOrderUpdate(o.Copy())
			continue
		}

		long, short := e.acct.Positions()
		am := kernel.CalculateAvailableMargin(e.balanceFloat(), long.Qty, long.AvgPrice, short.Qty, short.AvgPrice, c.Close, false, 1, e.cfg.Leverage)
		if o.Qty*o.Price < am {
			e.acct.HandleOrderUpdate(o.Copy())
		} else if e.onDropped != nil {
			e.onDropped(o.Copy())
		}
	}
	if positionSide == orderbook.Long {
		e.pending.DeleteLong(toRemove)
	} else {
		e.pending.DeleteShort(toRemove)
	}
}
