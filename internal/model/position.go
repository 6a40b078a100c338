package model

// PositionSnapshot is a liquidity position as listed by the PositionManager, with
// its price range derived from the ticks. Integer on-chain values are decimal strings.
type PositionSnapshot struct {
	ID         string    `json:"id"`
	Owner      string    `json:"owner"`
	OwnerShort string    `json:"owner_short"`
	Token0     TokenMeta `json:"token0"`
	Token1     TokenMeta `json:"token1"`
	Index      uint32    `json:"index"`
	Fee        uint32    `json:"fee"`
	// FeeText is the fee tier as a percentage, e.g. "0.30".
	FeeText      string  `json:"fee_text"`
	TickLower    int32   `json:"tick_lower"`
	TickUpper    int32   `json:"tick_upper"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	MinPriceText string  `json:"min_price_text"`
	MaxPriceText string  `json:"max_price_text"`
	Liquidity    string  `json:"liquidity"`
	// TokensOwed0 and TokensOwed1 are collectable raw amounts.
	TokensOwed0              string `json:"tokens_owed0"`
	TokensOwed1              string `json:"tokens_owed1"`
	TokensOwed0Text          string `json:"tokens_owed0_text"`
	TokensOwed1Text          string `json:"tokens_owed1_text"`
	FeeGrowthInside0LastX128 string `json:"fee_growth_inside0_last_x128"`
	FeeGrowthInside1LastX128 string `json:"fee_growth_inside1_last_x128"`
}

// PoolDiff compares a pool against its last stored snapshot.
type PoolDiff struct {
	Address   string  `json:"address"`
	Known     bool    `json:"known"`
	PrevTick  int32   `json:"prev_tick"`
	Tick      int32   `json:"tick"`
	TickDelta int32   `json:"tick_delta"`
	PrevPrice float64 `json:"prev_price"`
	Price     float64 `json:"price"`
	// PriceChangeText is the relative price change in percent.
	PriceChangeText string `json:"price_change_text"`
	PrevLiquidity   string `json:"prev_liquidity"`
	Liquidity       string `json:"liquidity"`
	PrevObservedAt  string `json:"prev_observed_at,omitempty"`
}
