package market

import "errors"

// Terminal rejection kinds. Every failed operation aborts with zero side
// effects; callers resubmit with corrected inputs or state.
var (
	ErrAssetNotOwned     = errors.New("market: asset not held by lister")
	ErrDuplicateListing  = errors.New("market: asset already listed")
	ErrListingNotFound   = errors.New("market: listing not found")
	ErrInvalidBuyer      = errors.New("market: buyer and seller are the same account")
	ErrInsufficientFunds = errors.New("market: insufficient funds")
)
