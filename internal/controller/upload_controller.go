package controller

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"realty_backend/internal/model"
	"realty_backend/pkg/database"
	"realty_backend/pkg/utils/image"
	"realty_backend/pkg/utils/jwt"
	"realty_backend/pkg/utils/storage"
	"realty_backend/pkg/utils/validation"
)

func canManage(claims *jwt.Claims, property *model.Property) bool {
	return property.AgentID == claims.UserID || model.Role(claims.Role) == model.RoleAdmin
}

// UploadPropertyImage validates, re-encodes and stores one image for a
// listing. The first image becomes the cover.
func UploadPropertyImage(c *fiber.Ctx) error {
	claims := currentClaims(c)

	propertyID, err := c.ParamsInt("property_id")
	if err != nil || propertyID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid property ID",
		})
	}

	var property model.Property
	if err := database.GetDB().Preload("Agent").First(&property, propertyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Property not found",
		})
	}
	if !canManage(claims, &property) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to upload images for this property",
		})
	}

	var imageCount int64
	database.GetDB().Model(&model.PropertyImage{}).
		Where("property_id = ?", property.ID).
		Count(&imageCount)

	if imageCount >= MaxPropertyImages {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Maximum image limit reached (%d)", MaxPropertyImages),
		})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}
	if err := validation.PropertyPhoto.Check(file); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	buf, contentType, err := image.ProcessUpload(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Could not process image",
		})
	}

	key := storage.PropertyImageKey(property.Agent.Name, property.Slug, file.Filename)
	url, err := opts.Uploader.Upload(c.UserContext(), key, buf, contentType)
	if err != nil {
		log.Printf("Image upload failed for property %d: %v", property.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not upload image",
		})
	}

	img := model.PropertyImage{
		PropertyID: property.ID,
		URL:        url,
		Order:      int(imageCount),
		IsCover:    imageCount == 0,
	}
	if err := database.GetDB().Create(&img).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save image record",
		})
	}

	if img.IsCover {
		afterWrite()
	}

	return c.JSON(fiber.Map{
		"message": "Image uploaded successfully",
		"image":   img,
	})
}

// DeletePropertyImage removes an image from storage and the database. When
// the cover goes, the next image in order takes its place.
func DeletePropertyImage(c *fiber.Ctx) error {
	claims := currentClaims(c)

	imageID, err := c.ParamsInt("image_id")
	if err != nil || imageID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid image ID",
		})
	}

	var img model.PropertyImage
	if err := database.GetDB().Preload("Property").First(&img, imageID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Image not found",
		})
	}
	if !canManage(claims, &img.Property) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to delete this image",
		})
	}

	if err := opts.Uploader.Delete(c.UserContext(), img.URL); err != nil {
		log.Printf("Could not delete file: %v", err)
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&img).Error; err != nil {
			return err
		}
		if !img.IsCover {
			return nil
		}
		var next model.PropertyImage
		err := tx.Where("property_id = ?", img.PropertyID).Order("\"order\" ASC").First(&next).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_cover", true).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete image",
		})
	}

	if img.IsCover {
		afterWrite()
	}
	return c.SendStatus(fiber.StatusNoContent)
}
