// Package account owns the single source of truth for an account's
// balance and its two positions (long, short), and forwards every
// mutation to the order book and to any registered observers.
package account

import (
	"github.com/shopspring/decimal"

	"candlesim/internal/orderbook"
)

// Observer is notified after every account or order mutation. The
// simulated exchange never depends on a concrete observer; eventlog and
// metrics recorders both implement this to stay decoupled from the core.
type Observer interface {
	OnAccountUpdate(balance decimal.Decimal, long, short Position)
	OnOrderUpdate(o orderbook.Order)
}

// Account holds the balance and the long/short positions for one symbol
// and is the only thing allowed to mutate them.
type Account struct {
	balance decimal.Decimal
	long    Position
	short   Position

	book      *orderbook.Book
	observers []Observer
}

// New returns an Account backed by book for order-lifecycle bookkeeping,
// seeded with startingBalance and empty long/short positions.
func New(book *orderbook.Book, startingBalance decimal.Decimal, symbol string) *Account {
	return &Account{
		balance: startingBalance,
		long:    Position{Symbol: symbol, PositionSide: orderbook.Long},
		short:   Position{Symbol: symbol, PositionSide: orderbook.Short},
		book:    book,
	}
}

// Subscribe registers an observer to receive future update notifications.
func (a *Account) Subscribe(o Observer) {
	a.observers = append(a.observers, o)
}

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal {
	return a.balance
}

// Positions returns the current long and short positions.
func (a *Account) Positions() (long, short Position) {
	return a.long, a.short
}

// HandleAccountUpdate atomically replaces balance and both positions,
// then notifies observers.
func (a *Account) HandleAccountUpdate(balance decimal.Decimal, long, short Position) {
	a.balance = balance
	a.long = long
	a.short = short
	for _, obs := range a.observers {
		obs.OnAccountUpdate(balance, long, short)
	}
}

// HandleOrderUpdate records an order's lifecycle transition: it appends
// new orders to the book, removes terminal orders, updates quantity in
// place for partial fills, and notifies observers with a value copy of
// the order in every case.
func (a *Account) HandleOrderUpdate(o orderbook.Order) {
	switch o.Action {
	case orderbook.New:
		copyForBook := o
		if o.PositionSide == orderbook.Long {
			a.book.AppendLong(&copyForBook)
		} else {
			a.book.AppendShort(&copyForBook)
		}
	case orderbook.PartiallyFilled:
		a.updateInPlace(o)
	default:
		if o.Action.Terminal() {
			a.removeFromBook(o)
		}
	}
	for _, obs := range a.observers {
		obs.OnOrderUpdate(o)
	}
}

func (a *Account) updateInPlace(o orderbook.Order) {
	var side []*orderbook.Order
	if o.PositionSide == orderbook.Long {
		side = a.book.Long()
	} else {
		side = a.book.Short()
	}
	for _, existing := range side {
		if existing.ClientID == o.ClientID && existing.PositionSide == o.PositionSide {
			existing.Qty = o.Qty
			existing.Action = o.Action
			return
		}
	}
}

func (a *Account) removeFromBook(o orderbook.Order) {
	if o.PositionSide == orderbook.Long {
		a.book.DeleteLong([]*orderbook.Order{&o})
	} else {
		a.book.DeleteShort([]*orderbook.Order{&o})
	}
}
