package orderbook

import "testing"

func TestAppendAndDeletePreservesOrder(t *testing.T) {
	b := NewBook()
	o1 := &Order{ClientID: "1", PositionSide: Long}
	o2 := &Order{ClientID: "2", PositionSide: Long}
	o3 := &Order{ClientID: "3", PositionSide: Long}
	b.AppendLong(o1)
	b.AppendLong(o2)
	b.AppendLong(o3)

	b.DeleteLong([]*Order{o2})

	got := b.Long()
	if len(got) != 2 || got[0] != o1 || got[1] != o3 {
		t.Fatalf("Long() after delete = %+v, want [o1, o3]", got)
	}
}

func TestDeleteShortDoesNotTouchLong(t *testing.T) {
	b := NewBook()
	l := &Order{ClientID: "1", PositionSide: Long}
	s := &Order{ClientID: "1", PositionSide: Short}
	b.AppendLong(l)
	b.AppendShort(s)

	b.DeleteShort([]*Order{s})

	if len(b.Short()) != 0 {
		t.Fatalf("Short() = %+v, want empty", b.Short())
	}
	if len(b.Long()) != 1 {
		t.Fatalf("Long() = %+v, want [l]", b.Long())
	}
}

func TestDeleteByClientID(t *testing.T) {
	b := NewBook()
	o := &Order{ClientID: "abc", PositionSide: Short}
	b.AppendShort(o)

	if !b.DeleteByClientID("abc", Short) {
		t.Fatalf("DeleteByClientID returned false, want true")
	}
	if len(b.Short()) != 0 {
		t.Fatalf("Short() = %+v, want empty", b.Short())
	}
	if b.DeleteByClientID("missing", Long) {
		t.Fatalf("DeleteByClientID for missing order returned true")
	}
}

func TestActionTerminal(t *testing.T) {
	terminal := []Action{Filled, Canceled, Liquidation}
	for _, a := range terminal {
		if !a.Terminal() {
			t.Errorf("%v.Terminal() = false, want true", a)
		}
	}
	nonTerminal := []Action{New, PartiallyFilled, Calculated}
	for _, a := range nonTerminal {
		if a.Terminal() {
			t.Errorf("%v.Terminal() = true, want false", a)
		}
	}
}
