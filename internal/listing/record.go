// Package listing filters, sorts and paginates property catalogs. Everything
// here is a pure function over its inputs and safe for concurrent use.
package listing

import "errors"

const (
	PurposeSale = "for-sale"
	PurposeRent = "for-rent"

	All     = "all"
	AnyBeds = "any"
	// FourPlusBeds matches every record with four or more bedrooms.
	FourPlusBeds = "4+"

	SortNewest    = "newest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"

	DefaultPageSize      = 6
	DefaultAgentPageSize = 4
)

var ErrInvalidArgument = errors.New("listing: invalid argument")

// Record is one property as seen by the engine. Price keeps the display
// string; it is parsed on demand with price.Parse.
type Record struct {
	ID        int64  `json:"id"`
	Slug      string `json:"slug,omitempty"`
	Title     string `json:"title"`
	Location  string `json:"location"`
	Type      string `json:"type"`
	Purpose   string `json:"purpose"`
	Price     string `json:"price"`
	Beds      int    `json:"beds"`
	Baths     int    `json:"baths,omitempty"`
	AreaSqFt  int    `json:"area_sq_ft,omitempty"`
	AgentID   uint   `json:"agent_id,omitempty"`
	AgentName string `json:"agent_name"`
	Image     string `json:"image,omitempty"`
}

// FilterSpec is the query applied to a catalog. Empty strings behave like
// "all"/"any" so a zero FilterSpec (with a page size) matches everything.
type FilterSpec struct {
	Purpose      string
	AgentName    string
	Location     string
	PropertyType string
	MinPrice     string
	MaxPrice     string
	Beds         string
	SortBy       string
	Page         int
	PageSize     int
}

// Result is one page of a filtered, sorted catalog.
type Result struct {
	Items      []Record `json:"properties"`
	TotalCount int      `json:"total_count"`
	TotalPages int      `json:"total_pages"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}
