package model

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"realty_backend/internal/listing"
	"realty_backend/pkg/price"
)

// Property Types
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "Apartment"
	PropertyTypeVilla     PropertyType = "Villa"
	PropertyTypeFlat      PropertyType = "Flat"
	PropertyTypePenthouse PropertyType = "Penthouse"
	PropertyTypeStudio    PropertyType = "Studio"
	PropertyTypeHouse     PropertyType = "House"
	PropertyTypePlot      PropertyType = "Plot"
)

// Purpose decides whether Price is a sale price or a monthly rent.
type Purpose string

const (
	PurposeForSale Purpose = listing.PurposeSale
	PurposeForRent Purpose = listing.PurposeRent
)

func (p Purpose) Valid() bool {
	return p == PurposeForSale || p == PurposeForRent
}

type Property struct {
	gorm.Model
	Title       string       `json:"title" gorm:"not null"`
	Slug        string       `json:"slug" gorm:"uniqueIndex;not null"`
	Description string       `json:"description" gorm:"type:text"`
	Location    string       `json:"location" gorm:"not null;index"`
	Type        PropertyType `json:"type" gorm:"not null;index"`
	Purpose     Purpose      `json:"purpose" gorm:"not null;index"`

	// Price is the display string ("₹1.5 Cr", "₹18,000/month"); PriceValue
	// is the same amount in rupees, filled on save.
	Price      string `json:"price" gorm:"not null"`
	PriceValue int64  `json:"price_value" gorm:"index"`

	Beds      int            `json:"beds"`
	Baths     int            `json:"baths"`
	AreaSqFt  int            `json:"area_sq_ft"`
	Amenities datatypes.JSON `json:"amenities"`

	AgentID uint            `json:"agent_id" gorm:"index"`
	Agent   User            `json:"-" gorm:"foreignKey:AgentID"`
	Images  []PropertyImage `json:"images" gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
}

type PropertyImage struct {
	gorm.Model
	PropertyID uint   `json:"property_id" gorm:"index"`
	URL        string `json:"url" gorm:"not null"`
	IsCover    bool   `json:"is_cover" gorm:"default:false"`
	Order      int    `json:"order" gorm:"default:0"`

	Property Property `json:"-" gorm:"foreignKey:PropertyID"`
}

// BeforeSave fills the slug on first save and keeps PriceValue in step with
// the display price.
func (p *Property) BeforeSave(tx *gorm.DB) error {
	amount, ok := price.Parse(p.Price)
	if !ok {
		return fmt.Errorf("unparseable price %q", p.Price)
	}
	p.PriceValue = amount

	if p.Slug == "" {
		base := slug.Make(p.Title)
		if base == "" {
			base = "property"
		}
		candidate := base

		var count int64
		tx.Unscoped().Model(&Property{}).Where("slug = ?", candidate).Count(&count)
		for i := 2; count > 0; i++ {
			candidate = fmt.Sprintf("%s-%d", base, i)
			tx.Unscoped().Model(&Property{}).Where("slug = ?", candidate).Count(&count)
		}
		p.Slug = candidate
	}
	return nil
}

// CoverImage returns the URL of the cover image, or the first image.
func (p *Property) CoverImage() string {
	for _, img := range p.Images {
		if img.IsCover {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

// ToRecord converts the row into the record the listing engine works on.
func (p *Property) ToRecord() listing.Record {
	return listing.Record{
		ID:        int64(p.ID),
		Slug:      p.Slug,
		Title:     p.Title,
		Location:  p.Location,
		Type:      string(p.Type),
		Purpose:   string(p.Purpose),
		Price:     p.Price,
		Beds:      p.Beds,
		Baths:     p.Baths,
		AreaSqFt:  p.AreaSqFt,
		AgentID:   p.AgentID,
		AgentName: strings.TrimSpace(p.Agent.Name),
		Image:     p.CoverImage(),
	}
}
