package model

// TxRequest is an unsigned contract call ready to hand to a wallet.
type TxRequest struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// CreatePoolPlan describes a createAndInitializePoolIfNecessary call.
type CreatePoolPlan struct {
	Token0       string    `json:"token0"`
	Token1       string    `json:"token1"`
	Fee          uint32    `json:"fee"`
	TickSpacing  int32     `json:"tick_spacing"`
	TickLower    int32     `json:"tick_lower"`
	TickUpper    int32     `json:"tick_upper"`
	MinPrice     float64   `json:"min_price"`
	MaxPrice     float64   `json:"max_price"`
	Price        float64   `json:"price"`
	SqrtPriceX96 string    `json:"sqrt_price_x96"`
	Tx           TxRequest `json:"tx"`
}

// MintPlan describes a PositionManager mint call.
type MintPlan struct {
	// Pool is set when the pool address was looked up on chain.
	Pool           string    `json:"pool,omitempty"`
	Token0         string    `json:"token0"`
	Token1         string    `json:"token1"`
	Index          uint32    `json:"index"`
	Amount0Desired string    `json:"amount0_desired"`
	Amount1Desired string    `json:"amount1_desired"`
	Recipient      string    `json:"recipient"`
	Deadline       uint64    `json:"deadline"`
	Tx             TxRequest `json:"tx"`
}

// SwapPlan describes a SwapRouter exactInput call.
type SwapPlan struct {
	TokenIn           string    `json:"token_in"`
	TokenOut          string    `json:"token_out"`
	IndexPath         []uint32  `json:"index_path"`
	ZeroForOne        bool      `json:"zero_for_one"`
	AmountIn          string    `json:"amount_in"`
	AmountOutMinimum  string    `json:"amount_out_minimum"`
	SqrtPriceLimitX96 string    `json:"sqrt_price_limit_x96"`
	Recipient         string    `json:"recipient"`
	Deadline          uint64    `json:"deadline"`
	Tx                TxRequest `json:"tx"`
}

// ExactOutputSwapPlan describes a SwapRouter exactOutput call.
type ExactOutputSwapPlan struct {
	TokenIn           string    `json:"token_in"`
	TokenOut          string    `json:"token_out"`
	IndexPath         []uint32  `json:"index_path"`
	ZeroForOne        bool      `json:"zero_for_one"`
	AmountOut         string    `json:"amount_out"`
	AmountInMaximum   string    `json:"amount_in_maximum"`
	SqrtPriceLimitX96 string    `json:"sqrt_price_limit_x96"`
	Recipient         string    `json:"recipient"`
	Deadline          uint64    `json:"deadline"`
	Tx                TxRequest `json:"tx"`
}

// BurnPlan describes a PositionManager burn call.
type BurnPlan struct {
	PositionID string    `json:"position_id"`
	Tx         TxRequest `json:"tx"`
}

// CollectPlan describes a PositionManager collect call.
type CollectPlan struct {
	PositionID string    `json:"position_id"`
	Recipient  string    `json:"recipient"`
	Tx         TxRequest `json:"tx"`
}

// ApprovePlan describes an ERC20 approve call.
type ApprovePlan struct {
	Token   string    `json:"token"`
	Spender string    `json:"spender"`
	Amount  string    `json:"amount"`
	Tx      TxRequest `json:"tx"`
}
