package model

// CommitRecord is a computed commit hash together with its preimage fields.
type CommitRecord struct {
	CommitHash   string `json:"commit_hash"`
	Sender       string `json:"sender"`
	AmountIn     string `json:"amount_in"`
	MinAmountOut string `json:"min_amount_out"`
	TokenIn      string `json:"token_in"`
	TokenOut     string `json:"token_out"`
	Nonce        string `json:"nonce"`
	CreatedAt    string `json:"created_at"`
}
