package checker

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenguard/honeypot-checker/pkg/types"
)

// TransferSource provides paginated token-transfer history for a contract.
// Pages are 1-based; an exhausted history is an empty page with a nil error,
// a broken fetch is a non-nil error.
type TransferSource interface {
	TokenTransfers(ctx context.Context, token common.Address, page, offset int, order types.SortOrder) ([]types.TransferRecord, error)
}

// VerificationSource reports whether a contract has published, verified
// source code on the explorer.
type VerificationSource interface {
	IsContractVerified(ctx context.Context, address common.Address) (bool, error)
}
