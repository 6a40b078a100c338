package model

// TokenMeta captures ERC20 metadata.
type TokenMeta struct {
	Address  string `json:"address" mapstructure:"address"`
	Decimals uint8  `json:"decimals" mapstructure:"decimals"`
	Symbol   string `json:"symbol" mapstructure:"symbol"`
	Name     string `json:"name" mapstructure:"name"`
}
