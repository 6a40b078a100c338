package model

// PoolSnapshot is a pool as listed by the PoolManager at read time, with prices
// derived off-chain. Integer on-chain values are kept as decimal strings.
type PoolSnapshot struct {
	ChainID      uint64    `json:"chain_id"`
	Address      string    `json:"address"`
	Index        uint32    `json:"index"`
	Token0       TokenMeta `json:"token0"`
	Token1       TokenMeta `json:"token1"`
	Fee          uint32    `json:"fee"`
	TickSpacing  int32     `json:"tick_spacing"`
	TickLower    int32     `json:"tick_lower"`
	TickUpper    int32     `json:"tick_upper"`
	Tick         int32     `json:"tick"`
	SqrtPriceX96 string    `json:"sqrt_price_x96"`
	Liquidity    string    `json:"liquidity"`
	Initialized  bool      `json:"initialized"`
	// Price is token1 per token0 in human units.
	Price     float64 `json:"price"`
	PriceText string  `json:"price_text"`
	MinPrice  float64 `json:"min_price"`
	MaxPrice  float64 `json:"max_price"`
	// TickConsistent reports whether Tick agrees with the tick derived from SqrtPriceX96.
	TickConsistent bool `json:"tick_consistent"`
	// Balance0 and Balance1 are raw ERC20 balances held by the pool, when requested.
	Balance0   string `json:"balance0,omitempty"`
	Balance1   string `json:"balance1,omitempty"`
	ObservedAt string `json:"observed_at"`
}
