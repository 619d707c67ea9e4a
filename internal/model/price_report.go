package model

const (
	PriceSourceTWAP         = "twap"
	PriceSourceFallback     = "fallback"
	PriceSourceStalePrimary = "stale_primary"
)

// PriceReport is the outcome of one oracle evaluation. Big values are
// decimal strings.
type PriceReport struct {
	ChainID           uint64         `json:"chain_id"`
	Pool              string         `json:"pool"`
	SqrtPriceX96      string         `json:"sqrt_price_x96"`
	Tick              int32          `json:"tick"`
	SpotPrice         string         `json:"spot_price"`
	SpotPriceInverted string         `json:"spot_price_inverted"`
	AverageTick       int64          `json:"average_tick"`
	TwapPrice         string         `json:"twap_price"`
	TwapWindowSecs    uint32         `json:"twap_window_seconds"`
	ObservationTS     uint64         `json:"observation_ts"`
	EvaluatedAt       uint64         `json:"evaluated_at"`
	AgeSeconds        uint64         `json:"age_seconds"`
	Stale             bool           `json:"stale"`
	Price             string         `json:"price"`
	PriceSource       string         `json:"price_source"`
	Fallback          *FallbackPrice `json:"fallback,omitempty"`
	V4                *V4PoolState   `json:"v4,omitempty"`
}

// FallbackPrice records the cross rate that replaced a stale primary price.
type FallbackPrice struct {
	FeedA      string `json:"feed_a"`
	FeedB      string `json:"feed_b"`
	RoundA     string `json:"round_a"`
	RoundB     string `json:"round_b"`
	AnswerA    string `json:"answer_a"`
	AnswerB    string `json:"answer_b"`
	UpdatedA   string `json:"updated_a"`
	UpdatedB   string `json:"updated_b"`
	CrossPrice string `json:"cross_price"`
}

// V4PoolState is a StateView reading keyed by a derived pool id.
type V4PoolState struct {
	PoolID       string `json:"pool_id"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Tick         int32  `json:"tick"`
	LPFee        uint32 `json:"lp_fee"`
	SpotPrice    string `json:"spot_price"`
}
