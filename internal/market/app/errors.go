package app

import (
	"errors"

	"gophermart.com/internal/market"
	"gophermart.com/pkg/xerr"
)

// Code translates a marketplace rejection into its public error code for
// transport layers and API gateways sitting in front of the service.
func Code(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, market.ErrAssetNotOwned):
		return xerr.NewErrCode(xerr.AssetNotOwned)
	case errors.Is(err, market.ErrDuplicateListing):
		return xerr.NewErrCode(xerr.DuplicateListing)
	case errors.Is(err, market.ErrListingNotFound):
		return xerr.NewErrCode(xerr.ListingNotFound)
	case errors.Is(err, market.ErrInvalidBuyer):
		return xerr.NewErrCode(xerr.InvalidBuyer)
	case errors.Is(err, market.ErrInsufficientFunds):
		return xerr.NewErrCode(xerr.InsufficientFunds)
	default:
		return xerr.NewErrCode(xerr.ServerCommonError)
	}
}
