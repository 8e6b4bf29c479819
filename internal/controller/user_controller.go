package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"realty_backend/internal/model"
	"realty_backend/pkg/database"
	"realty_backend/pkg/utils/image"
	"realty_backend/pkg/utils/storage"
	"realty_backend/pkg/utils/validation"
)

type ProfileUpdateInput struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Location   string `json:"location"`
	Bio        string `json:"bio"`
	Experience int    `json:"experience"`
}

type RoleUpdateInput struct {
	Role model.Role `json:"role"`
}

func GetProfile(c *fiber.Ctx) error {
	claims := currentClaims(c)

	var user model.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(user.GetPublicProfile())
}

func UpdateProfile(c *fiber.Ctx) error {
	claims := currentClaims(c)
	input := new(ProfileUpdateInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || input.Experience < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required and experience must not be negative",
		})
	}

	var user model.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	updates := map[string]interface{}{
		"name":       input.Name,
		"phone":      strings.TrimSpace(input.Phone),
		"location":   strings.TrimSpace(input.Location),
		"bio":        input.Bio,
		"experience": input.Experience,
	}

	if err := database.GetDB().Model(&user).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update profile",
		})
	}

	// agent names and locations feed the listing snapshot
	if user.IsAgent() {
		afterWrite()
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    user.GetPublicProfile(),
	})
}

func UploadAvatar(c *fiber.Ctx) error {
	claims := currentClaims(c)

	var user model.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No avatar image provided",
		})
	}
	if err := validation.Avatar.Check(file); err != nil {
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

	ctx := c.UserContext()
	avatarURL, err := opts.Uploader.Upload(ctx, storage.AvatarKey(user.Name, file.Filename), buf, contentType)
	if err != nil {
		log.Printf("Avatar upload failed for user %d: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not upload avatar",
		})
	}

	if user.Avatar != "" {
		if err := opts.Uploader.Delete(ctx, user.Avatar); err != nil {
			log.Printf("Error deleting old avatar: %v", err)
		}
	}

	if err := database.GetDB().Model(&user).Update("avatar", avatarURL).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update avatar",
		})
	}

	if user.IsAgent() {
		afterWrite()
	}

	return c.JSON(fiber.Map{
		"message": "Avatar uploaded successfully",
		"avatar":  avatarURL,
	})
}

// ListUsers returns every account, optionally narrowed by ?role=.
func ListUsers(c *fiber.Ctx) error {
	query := database.GetDB().Order("id ASC")
	if role := model.Role(c.Query("role")); role != "" {
		if !role.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid role",
			})
		}
		query = query.Where("role = ?", role)
	}

	var users []model.User
	if err := query.Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch users",
		})
	}

	profiles := make([]map[string]interface{}, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].GetPublicProfile())
	}
	return c.JSON(fiber.Map{"users": profiles})
}

func UpdateUserRole(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	input := new(RoleUpdateInput)
	if err := c.BodyParser(input); err != nil || !input.Role.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role",
		})
	}

	var user model.User
	if err := database.GetDB().First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch user",
		})
	}

	if err := database.GetDB().Model(&user).Update("role", input.Role).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update role",
		})
	}

	afterWrite()
	return c.JSON(fiber.Map{
		"message": "Role updated successfully",
		"user":    user.GetPublicProfile(),
	})
}

// DeleteUser removes an account together with its listings.
func DeleteUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}
	if claims := currentClaims(c); claims != nil && claims.UserID == uint(id) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You cannot delete your own account",
		})
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		owned := tx.Model(&model.Property{}).Select("id").Where("agent_id = ?", user.ID)
		if err := tx.Where("property_id IN (?)", owned).Delete(&model.PropertyImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("agent_id = ?", user.ID).Delete(&model.Property{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete user",
		})
	}

	afterWrite()
	return c.SendStatus(fiber.StatusNoContent)
}
