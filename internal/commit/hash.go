package commit

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"commitGuard/internal/abienc"
)

// commitTypes mirrors keccak256(abi.encodePacked(msg.sender, amountIn,
// minAmountOut, tokenIn, tokenOut, nonce)) in the MEV protection contract.
var commitTypes = []abienc.Type{
	abienc.Address,
	abienc.Uint256,
	abienc.Uint256,
	abienc.Address,
	abienc.Address,
	abienc.Uint256,
}

// EncodeIntent returns the packed commit preimage.
func EncodeIntent(intent TradeIntent) ([]byte, error) {
	return abienc.EncodePacked(commitTypes, []any{
		intent.Sender,
		intent.AmountIn,
		intent.MinAmountOut,
		intent.TokenIn,
		intent.TokenOut,
		intent.Nonce,
	})
}

// ComputeCommitHash returns the keccak256 commitment for a trade intent.
func ComputeCommitHash(intent TradeIntent) (common.Hash, error) {
	packed, err := EncodeIntent(intent)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(packed), nil
}
