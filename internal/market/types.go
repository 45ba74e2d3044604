package market

import "fmt"

// AccountID addresses one account across custody, ledger and registries.
type AccountID uint64

// AssetID identifies one non-fungible asset: the issuing collection
// (creator account + collection name) plus the item name inside it.
// Comparable, so it keys registry maps directly.
type AssetID struct {
	Creator    AccountID
	Collection string
	Name       string
}

func (id AssetID) String() string {
	return fmt.Sprintf("%d/%s/%s", id.Creator, id.Collection, id.Name)
}

// Asset is the transferable item held in custody or escrowed in a listing.
type Asset struct {
	ID   AssetID
	Meta string
}

// Listing is one asset escrowed for sale at a fixed price. Held is a value,
// not a pointer or option: while the Listing record exists the slot is
// occupied, and the record is removed in the same step that releases the
// asset. The illegal "record present, slot empty" state is unrepresentable.
type Listing struct {
	Price uint64
	Held  Asset
}

// Per-seller event stream names.
const (
	StreamListing   = "listing"
	StreamBuying    = "buying"
	StreamDelisting = "delisting"
)

// ListedEvent is appended to the listing stream on a successful List.
type ListedEvent struct {
	Asset AssetID `json:"asset"`
	Price uint64  `json:"price"`
}

// SoldEvent is appended to the seller's buying stream on settlement.
type SoldEvent struct {
	Asset AssetID `json:"asset"`
}

// DelistedEvent is appended to the delisting stream on reclamation.
type DelistedEvent struct {
	Asset AssetID `json:"asset"`
}
