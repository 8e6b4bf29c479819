package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"realty_backend/internal/catalog"
	"realty_backend/internal/listing"
	"realty_backend/internal/model"
	"realty_backend/pkg/database"
	"realty_backend/pkg/price"
)

const MaxPropertyImages = 16

type PropertyInput struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Location    string             `json:"location"`
	Type        model.PropertyType `json:"type"`
	Purpose     model.Purpose      `json:"purpose"`

	// Either Price ("₹1.5 Cr") or PriceValue in rupees must be set.
	Price      string `json:"price"`
	PriceValue int64  `json:"price_value"`

	Beds      int      `json:"beds"`
	Baths     int      `json:"baths"`
	AreaSqFt  int      `json:"area_sq_ft"`
	Amenities []string `json:"amenities"`
	Images    []string `json:"images"`
}

// validate checks the input and normalises the display price.
func (in *PropertyInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	in.Price = strings.TrimSpace(in.Price)

	switch {
	case in.Title == "":
		return errors.New("title is required")
	case in.Location == "":
		return errors.New("location is required")
	case in.Type == "":
		return errors.New("type is required")
	case !in.Purpose.Valid():
		return fmt.Errorf("purpose must be %q or %q", model.PurposeForSale, model.PurposeForRent)
	case in.Beds < 0 || in.Baths < 0 || in.AreaSqFt < 0:
		return errors.New("beds, baths and area must not be negative")
	case len(in.Images) > MaxPropertyImages:
		return fmt.Errorf("maximum %d images allowed", MaxPropertyImages)
	}

	if in.Price == "" {
		if in.PriceValue <= 0 {
			return errors.New("price is required")
		}
		in.Price = price.Format(in.PriceValue, in.Purpose == model.PurposeForRent)
	}
	if _, ok := price.Parse(in.Price); !ok {
		return fmt.Errorf("could not read price %q", in.Price)
	}
	return nil
}

func (in *PropertyInput) apply(p *model.Property) error {
	amenities, err := json.Marshal(in.Amenities)
	if err != nil {
		return err
	}
	p.Title = in.Title
	p.Description = in.Description
	p.Location = in.Location
	p.Type = in.Type
	p.Purpose = in.Purpose
	p.Price = in.Price
	p.Beds = in.Beds
	p.Baths = in.Baths
	p.AreaSqFt = in.AreaSqFt
	p.Amenities = datatypes.JSON(amenities)
	return nil
}

// filterSpecFromQuery reads the listing filters. Both the kebab-case names
// used by the site and their camelCase spellings are accepted.
func filterSpecFromQuery(c *fiber.Ctx) listing.FilterSpec {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return listing.FilterSpec{
		Purpose:      firstQuery(c, "purpose"),
		AgentName:    firstQuery(c, "agent", "agentName"),
		Location:     firstQuery(c, "location"),
		PropertyType: firstQuery(c, "property-type", "propertyType", "type"),
		MinPrice:     firstQuery(c, "minPrice", "min-price"),
		MaxPrice:     firstQuery(c, "maxPrice", "max-price"),
		Beds:         firstQuery(c, "beds"),
		SortBy:       firstQuery(c, "sortBy", "sort"),
		Page:         page,
		PageSize:     opts.PageSize,
	}
}

func firstQuery(c *fiber.Ctx, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(c.Query(name)); v != "" {
			return v
		}
	}
	return ""
}

// ListProperties serves one page of the filtered catalog snapshot.
func ListProperties(c *fiber.Ctx) error {
	spec := filterSpecFromQuery(c)
	key := cacheKey(propertiesCachePrefix, c, spec.Page)

	return sendCachedJSON(c, key, func() (interface{}, error) {
		result, err := listing.Apply(catalog.Default.Properties(), spec)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return result, nil
	})
}

// GetProperty returns one listing by numeric ID or slug.
func GetProperty(c *fiber.Ctx) error {
	ref := c.Params("id")

	query := database.GetDB().
		Preload("Agent").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("property_images.order ASC")
		})

	var property model.Property
	var err error
	if id, convErr := c.ParamsInt("id"); convErr == nil && id > 0 {
		err = query.First(&property, id).Error
	} else {
		err = query.Where("slug = ?", ref).First(&property).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Property not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch property",
		})
	}

	return c.JSON(fiber.Map{
		"property": property,
		"agent":    property.Agent.GetPublicProfile(),
	})
}

// CreateProperty creates a listing owned by the calling agent.
func CreateProperty(c *fiber.Ctx) error {
	claims := currentClaims(c)
	input := new(PropertyInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if err := input.validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	property := model.Property{AgentID: claims.UserID}
	if err := input.apply(&property); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid amenities",
		})
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&property).Error; err != nil {
			return err
		}
		return saveImages(tx, property.ID, input.Images)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create property",
		})
	}

	reloadProperty(&property)
	afterWrite()
	return c.Status(fiber.StatusCreated).JSON(property)
}

// UpdateProperty replaces the listing fields. CheckPropertyOwnership has
// already loaded the row.
func UpdateProperty(c *fiber.Ctx) error {
	property := c.Locals("property").(*model.Property)
	input := new(PropertyInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if err := input.validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err := input.apply(property); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid amenities",
		})
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(property).Error; err != nil {
			return err
		}
		// nil keeps the current images, an explicit list replaces them
		if input.Images == nil {
			return nil
		}
		if err := tx.Where("property_id = ?", property.ID).Delete(&model.PropertyImage{}).Error; err != nil {
			return err
		}
		return saveImages(tx, property.ID, input.Images)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update property",
		})
	}

	reloadProperty(property)
	afterWrite()
	return c.JSON(property)
}

// DeleteProperty removes a listing and its images.
func DeleteProperty(c *fiber.Ctx) error {
	property := c.Locals("property").(*model.Property)

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", property.ID).Delete(&model.PropertyImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(property).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete property",
		})
	}

	afterWrite()
	return c.SendStatus(fiber.StatusNoContent)
}

// ListMyProperties lists the caller's own listings, newest first.
func ListMyProperties(c *fiber.Ctx) error {
	claims := currentClaims(c)

	var properties []model.Property
	if err := database.GetDB().Where("agent_id = ?", claims.UserID).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("property_images.order ASC")
		}).
		Order("id desc").
		Find(&properties).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch properties",
		})
	}

	return c.JSON(properties)
}

func saveImages(tx *gorm.DB, propertyID uint, urls []string) error {
	for i, url := range urls {
		image := model.PropertyImage{
			PropertyID: propertyID,
			URL:        url,
			Order:      i,
			IsCover:    i == 0,
		}
		if err := tx.Create(&image).Error; err != nil {
			return err
		}
	}
	return nil
}

func reloadProperty(p *model.Property) {
	database.GetDB().Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("property_images.order ASC")
	}).First(p, p.ID)
}
