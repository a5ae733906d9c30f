package exchange

import (
	"testing"

	"github.com/shopspring/decimal"

	"candlesim/internal/account"
	"candlesim/internal/candle"
	"candlesim/internal/orderbook"
)

func newTestExchange(balance float64, cfg Config) *Exchange {
	book := orderbook.NewBook()
	acct := account.New(book, decimal.NewFromFloat(balance), cfg.Symbol)
	return New(cfg, acct, book)
}

func baseConfig() Config {
	return Config{
		Symbol:        "BTCUSDT",
		QuantityStep:  0.001,
		PriceStep:     1,
		Leverage:      10,
		MakerFee:      0.001,
		TakerFee:      0.002,
		LatencyMillis: 500,
	}
}

func TestAdmissionLatency(t *testing.T) {
	cfg := baseConfig()
	ex := newTestExchange(10000, cfg)

	ex.currentTimestamp = 1000
	ex.CreateOrders([]OrderIntent{{
		PositionSide: orderbook.Long, Side: orderbook.Buy, Type: orderbook.Limit, Price: 100, Qty: 1,
	}})

	// first step at t=1000: latency has not elapsed (order stamped at t=1000)
	ex.Step(candle.Candle{OpenTime: 1000, Open: 100, High: 100, Low: 100, Close: 100, Volume: 0})
	if len(ex.open.Long()) != 0 {
		t.Fatalf("order admitted before latency elapsed")
	}

	ex.Step(candle.Candle{OpenTime: 1500, Open: 100, High: 100, Low: 100, Close: 100, Volume: 0})
	if len(ex.open.Long()) != 1 {
		t.Fatalf("order not admitted after latency elapsed, open long = %+v", ex.open.Long())
	}
	if ex.open.Long()[0].Action != orderbook.New {
		t.Fatalf("admitted order action = %v, want NEW", ex.open.Long()[0].Action)
	}
}

func TestFullFill(t *testing.T) {
	cfg := baseConfig()
	ex := newTestExchange(10000, cfg)
	ex.open.AppendLong(&orderbook.Order{
		Symbol: cfg.Symbol, ClientID: "o1", PositionSide: orderbook.Long, Side: orderbook.Buy,
		Type: orderbook.Limit, Price: 100, Qty: 1, Action: orderbook.New,
	})

	ex.Step(candle.Candle{OpenTime: 1000, Open: 100, High: 101, Low: 99, Close: 100, Volume: 5})

	if len(ex.open.Long()) != 0 {
		t.Fatalf("order still open after full fill: %+v", ex.open.Long())
	}
	long, _ := ex.Account().Positions()
	if long.Qty != 1 || long.AvgPrice != 100 {
		t.Fatalf("long position = %+v, want qty=1 price=100", long)
	}
	gotBalance, _ := ex.Account().Balance().Float64()
	wantBalance := 10000.0 - 1*100*0.001
	if diff := gotBalance - wantBalance; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("balance = %v, want %v", gotBalance, wantBalance)
	}
}

func TestPartialFill(t *testing.T) {
	cfg := baseConfig()
	ex := newTestExchange(10000, cfg)
	ex.open.AppendLong(&orderbook.Order{
		Symbol: cfg.Symbol, ClientID: "o1", PositionSide: orderbook.Long, Side: orderbook.Buy,
		Type: orderbook.Limit, Price: 100, Qty: 10, Action: orderbook.New,
	})

	ex.Step(candle.Candle{OpenTime: 1000, Open: 100, High: 101, Low: 99, Close: 100, Volume: 3})

	if len(ex.open.Long()) != 1 {
		t.Fatalf("order should remain open after partial fill, got %+v", ex.open.Long())
	}
	if got := ex.open.Long()[0].Qty; got != 7 {
		t.Fatalf("residual open qty = %v, want 7", got)
	}
	long, _ := ex.Account().Positions()
	if long.Qty != 3 {
		t.Fatalf("long qty = %v, want 3", long.Qty)
	}
}

func TestTakeProfitOnLong(t *testing.T) {
	cfg := baseConfig()
	ex := newTestExchange(10000, cfg)
	ex.Account().HandleAccountUpdate(decimal.NewFromInt(10000),
		account.Position{Symbol: cfg.Symbol, Qty: 1, AvgPrice: 100, Leverage: cfg.Leverage, PositionSide: orderbook.Long},
		account.Position{Symbol: cfg.Symbol, PositionSide: orderbook.Short})
	ex.open.AppendLong(&orderbook.Order{
		Symbol: cfg.Symbol, ClientID: "tp1", PositionSide: orderbook.Long, Side: orderbook.Sell,
		Type: orderbook.TakeProfit, Price: 110, Qty: 1, Action: orderbook.New,
	})

	ex.Step(candle.Candle{OpenTime: 1000, Open: 109, High: 111, Low: 108, Close: 109, Volume: 2})

	long, _ := ex.Account().Positions()
	if !long.Empty() {
		t.Fatalf("long position should be flat after TP close, got %+v", long)
	}
	gotBalance, _ := ex.Account().Balance().Float64()
	wantBalance := 10000.0 + 10 - 1*110*cfg.MakerFee
	if diff := gotBalance - wantBalance; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("balance = %v, want %v", gotBalance, wantBalance)
	}
}

func TestLiquidation(t *testing.T) {
	cfg := baseConfig()
	cfg.Leverage = 10
	ex := newTestExchange(10, cfg)
	ex.Account().HandleAccountUpdate(decimal.NewFromInt(10),
		account.Position{Symbol: cfg.Symbol, Qty: 10, AvgPrice: 100, Leverage: cfg.Leverage, PositionSide: orderbook.Long},
		account.Position{Symbol: cfg.Symbol, PositionSide: orderbook.Short})

	cont := ex.Step(candle.Candle{OpenTime: 1000, Open: 80, High: 85, Low: 78, Close: 80, Volume: 100})

	if cont {
		t.Fatalf("Step returned true, want halt on liquidation")
	}
	long, _ := ex.Account().Positions()
	if !long.Empty() {
		t.Fatalf("long position should be zeroed after liquidation, got %+v", long)
	}
	if b := ex.Account().Balance(); !b.IsZero() {
		t.Fatalf("balance after liquidation = %v, want 0", b)
	}
}

func TestMarketOrderPricing(t *testing.T) {
	cfg := baseConfig()
	cfg.PriceStep = 1
	ex := newTestExchange(10000, cfg)
	ex.open.AppendLong(&orderbook.Order{
		Symbol: cfg.Symbol, ClientID: "m1", PositionSide: orderbook.Long, Side: orderbook.Buy,
		Type: orderbook.Market, Qty: 1, Action: orderbook.New,
	})

	ex.Step(candle.Candle{OpenTime: 1000, Open: 100, High: 120, Low: 90, Close: 110, Volume: 5})

	long, _ := ex.Account().Positions()
	if long.AvgPrice != 105 {
		t.Fatalf("fill price = %v, want 105", long.AvgPrice)
	}
}

func TestCancelAdmissionRemovesOpenOrderWithoutMarginCheck(t *testing.T) {
	cfg := baseConfig()
	ex := newTestExchange(10000, cfg)
	ex.open.AppendLong(&orderbook.Order{
		Symbol: cfg.Symbol, ClientID: "c1", PositionSide: orderbook.Long, Side: orderbook.Buy,
		Type: orderbook.Limit, Price: 100, Qty: 1, Action: orderbook.New,
	})
	ex.CancelOrders([]OrderIntent{{ClientID: "c1", PositionSide: orderbook.Long}})

	ex.Step(candle.Candle{OpenTime: int64(cfg.LatencyMillis), Open: 200, High: 200, Low: 200, Close: 200, Volume: 0})

	if len(ex.open.Long()) != 0 {
		t.Fatalf("canceled order still open: %+v", ex.open.Long())
	}
}

func TestPendingOrderDroppedWhenMarginInsufficient(t *testing.T) {
	cfg := baseConfig()
	ex := newTestExchange(1, cfg) // tiny balance, any sizable order should fail the margin check
	ex.CreateOrders([]OrderIntent{{
		PositionSide: orderbook.Long, Side: orderbook.Buy, Type: orderbook.Limit, Price: 100, Qty: 100,
	}})

	ex.Step(candle.Candle{OpenTime: int64(cfg.LatencyMillis), Open: 100, High: 100, Low: 100, Close: 100, Volume: 0})

	if len(ex.open.Long()) != 0 {
		t.Fatalf("order admitted despite insufficient margin: %+v", ex.open.Long())
	}
}
