// Package kernel holds the pure numeric helpers the simulated exchange
// builds on: step rounding, position-merge arithmetic, pnl, margin, and
// bankruptcy-price math. Every function here is reentrant and allocation
// free. RoundDown snaps a value to a price or quantity step; of the other
// functions only CalculateNewPositionSizePositionPrice snaps its result,
// and only the size it returns.
package kernel

import "math"

// RoundDown returns the largest multiple of step that is <= x. step must
// be > 0; a non-positive step returns x unchanged.
func RoundDown(x, step float64) float64 {
	if step <= 0 {
		return x
	}
	return math.Floor(x/step) * step
}

// QuantityToCost converts a fill into notional value. Only linear
// contracts (inverse=false) are supported by this simulator; the inverse
// branch is kept for signature parity with the source but is unused.
func QuantityToCost(qty, price float64, inverse bool, contractMultiplier float64) float64 {
	if inverse {
		if price == 0 {
			return 0
		}
		return qty * contractMultiplier / price
	}
	return qty * price * contractMultiplier
}

// CalculateLongPnL returns the realized pnl of closing qty of a long
// position entered at entry when exiting at exit.
func CalculateLongPnL(entry, exit, qty float64, inverse bool, mult float64) float64 {
	if inverse {
		if entry == 0 || exit == 0 {
			return 0
		}
		return qty * mult * (1/entry - 1/exit)
	}
	return (exit - entry) * qty * mult
}

// CalculateShortPnL returns the realized pnl of closing qty of a short
// position entered at entry when exiting at exit.
func CalculateShortPnL(entry, exit, qty float64, inverse bool, mult float64) float64 {
	if inverse {
		if entry == 0 || exit == 0 {
			return 0
		}
		return qty * mult * (1/exit - 1/entry)
	}
	return (entry - exit) * qty * mult
}

// CalculateNewPositionSizePositionPrice merges a fill into an existing
// position. deltaQty > 0 grows the position (volume-weighted average
// price); deltaQty < 0 shrinks it (price unchanged, realized pnl is the
// caller's responsibility). |deltaQty| > oldQty is the over-closing case:
// this function clamps the resulting size to zero and returns a zero
// price; the excess is discarded and no position flip is performed.
func CalculateNewPositionSizePositionPrice(oldQty, oldPrice, deltaQty, fillPrice, qtyStep float64) (newQty, newPrice float64) {
	if deltaQty > 0 {
		totalQty := oldQty + deltaQty
		if totalQty == 0 {
			return 0, 0
		}
		weighted := (oldQty*oldPrice + deltaQty*fillPrice) / totalQty
		return RoundDown(totalQty, qtyStep), weighted
	}

	closing := -deltaQty
	if closing >= oldQty {
		return 0, 0
	}
	newQty = RoundDown(oldQty-closing, qtyStep)
	if newQty == 0 {
		return 0, 0
	}
	return newQty, oldPrice
}

// CalculateAvailableMargin returns free balance after subtracting the
// required margin on both sides and adding unrealized pnl marked at
// markPrice. Required margin per side is qty*price*mult/leverage.
func CalculateAvailableMargin(balance, longQty, longPrice, shortQty, shortPrice, markPrice float64, inverse bool, mult, leverage float64) float64 {
	if leverage <= 0 {
		leverage = 1
	}
	requiredLong := QuantityToCost(longQty, longPrice, inverse, mult) / leverage
	requiredShort := QuantityToCost(shortQty, shortPrice, inverse, mult) / leverage
	unrealizedLong := CalculateLongPnL(longPrice, markPrice, longQty, inverse, mult)
	unrealizedShort := CalculateShortPnL(shortPrice, markPrice, shortQty, inverse, mult)
	return balance - requiredLong - requiredShort + unrealizedLong + unrealizedShort
}

// CalculateBankruptcyPrice returns the mark price at which available
// margin for the given sizes and balance would reach exactly zero. This
// doubles as the position's liquidation price.
func CalculateBankruptcyPrice(balance, longQty, longPrice, shortQty, shortPrice float64, inverse bool, mult float64) float64 {
	// Solve balance - margin + longPnl(mark) + shortPnl(mark) = 0 for mark,
	// where margin is already realized into balance by the caller and the
	// remaining unknown is the mark-dependent pnl term:
	//   (mark-longPrice)*longQty*mult + (shortPrice-mark)*shortQty*mult = -balance
	netQty := longQty - shortQty
	if netQty == 0 {
		return 0
	}
	rhs := -balance + longPrice*longQty*mult - shortPrice*shortQty*mult
	mark := rhs / (netQty * mult)
	if mark < 0 {
		return 0
	}
	return mark
}
