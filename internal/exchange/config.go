package exchange

// Config is the set of venue parameters the simulated exchange needs:
// symbol precision, fees, leverage, and latency. It mirrors the
// collaborator configuration described in spec.md §6.
type Config struct {
	Symbol        string
	QuantityStep  float64
	PriceStep     float64
	Leverage      float64
	MakerFee      float64 // applied as a negative balance delta regardless of sign in config
	TakerFee      float64
	LatencyMillis float64

	// AllowPositionFlip is reserved for the over-closing decision
	// (SPEC_FULL.md §10.1). Nothing reads it: excess quantity on an
	// over-closing fill is always discarded rather than opening the
	// opposite side, whatever its value.
	AllowPositionFlip bool
}
