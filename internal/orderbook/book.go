package orderbook

// Book holds two insertion-ordered sequences of open orders, one per
// position side. Deletion is by order identity and is stable for
// non-deleted entries.
type Book struct {
	long  []*Order
	short []*Order
}

// NewBook returns an empty order book.
func NewBook() *Book {
	return &Book{}
}

// AppendLong adds o to the long book.
func (b *Book) AppendLong(o *Order) {
	b.long = append(b.long, o)
}

// AppendShort adds o to the short book.
func (b *Book) AppendShort(o *Order) {
	b.short = append(b.short, o)
}

// Long returns the long book in insertion order. Callers must not mutate
// the returned slice's backing array length; individual orders may be
// mutated in place (this is how partial fills are modeled).
func (b *Book) Long() []*Order {
	return b.long
}

// Short returns the short book in insertion order.
func (b *Book) Short() []*Order {
	return b.short
}

// DeleteLong removes every order in toRemove from the long book by
// identity, preserving the relative order of what remains.
func (b *Book) DeleteLong(toRemove []*Order) {
	b.long = deleteByIdentity(b.long, toRemove)
}

// DeleteShort removes every order in toRemove from the short book by
// identity, preserving the relative order of what remains.
func (b *Book) DeleteShort(toRemove []*Order) {
	b.short = deleteByIdentity(b.short, toRemove)
}

// DeleteByClientID removes a single order by its (clientID, side)
// identity and reports whether one was found. Cancel admission in the
// exchange does not use it; it removes orders through
// Account.HandleOrderUpdate and DeleteLong/DeleteShort.
func (b *Book) DeleteByClientID(clientID string, side PositionSide) bool {
	target := clientID + "|" + string(side)
	if side == Long {
		for i, o := range b.long {
			if identity(o) == target {
				b.long = append(b.long[:i], b.long[i+1:]...)
				return true
			}
		}
		return false
	}
	for i, o := range b.short {
		if identity(o) == target {
			b.short = append(b.short[:i], b.short[i+1:]...)
			return true
		}
	}
	return false
}

func deleteByIdentity(book []*Order, toRemove []*Order) []*Order {
	if len(toRemove) == 0 {
		return book
	}
	drop := make(map[string]bool, len(toRemove))
	for _, o := range toRemove {
		drop[identity(o)] = true
	}
	out := book[:0:0]
	for _, o := range book {
		if !drop[identity(o)] {
			out = append(out, o)
		}
	}
	return out
}
