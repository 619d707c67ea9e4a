package model

// TokenMeta captures the ERC20 fields needed for price scaling.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
}
