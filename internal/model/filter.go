package model

// ShipmentFilter holds criteria for querying shipment requests.
type ShipmentFilter struct {
	Status         []Status `json:"status,omitempty" toml:"status"`
	Destination    string   `json:"destination,omitempty" toml:"destination"`
	OwnerID        string   `json:"owner_id,omitempty" toml:"owner_id"`
	Search         string   `json:"search,omitempty" toml:"search"` // substring match on name/destination
	Sort           string   `json:"sort,omitempty" toml:"sort"`     // e.g. "-updated_at", "name"; prefix "-" = descending
	IncludeDeleted bool     `json:"include_deleted,omitempty" toml:"include_deleted"`
	Limit          int      `json:"limit,omitempty" toml:"limit"`
	Offset         int      `json:"offset,omitempty" toml:"-"`
}
