package controller

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"

	"realty_backend/internal/model"
	"realty_backend/pkg/database"
	"realty_backend/pkg/email"
)

type EnquiryInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (in *EnquiryInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	if in.Name == "" {
		return errors.New("name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return errors.New("invalid email address")
	}
	if len(in.Message) > 2000 {
		return errors.New("message is too long")
	}
	return nil
}

// CreateEnquiry stores a visitor's message for the listing agent and mails
// the agent when notifications are configured.
func CreateEnquiry(c *fiber.Ctx) error {
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

	input := new(EnquiryInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	// signed-in visitors may leave the email out
	if claims := currentClaims(c); claims != nil && strings.TrimSpace(input.Email) == "" {
		input.Email = claims.Email
	}
	if err := input.validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	enquiry := model.Enquiry{
		PropertyID: property.ID,
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Message:    input.Message,
		Status:     model.EnquiryStatusNew,
	}
	if err := database.GetDB().Create(&enquiry).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create enquiry",
		})
	}

	if opts.Mailer != nil && property.Agent.Email != "" {
		data := email.EnquiryNotificationData{
			PropertyTitle:    property.Title,
			PropertyLocation: property.Location,
			PropertyPrice:    property.Price,
			Name:             input.Name,
			Email:            input.Email,
			Phone:            input.Phone,
			Message:          input.Message,
		}
		go func(to string) {
			if err := opts.Mailer.SendEnquiryNotification(context.Background(), to, data); err != nil {
				log.Printf("Could not send enquiry notification: %v", err)
			}
		}(property.Agent.Email)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Your enquiry has been sent. The agent will contact you soon.",
	})
}

// ListEnquiries returns the enquiries on the caller's listings, newest
// first. Admins see every enquiry.
func ListEnquiries(c *fiber.Ctx) error {
	claims := currentClaims(c)

	query := database.GetDB().
		Joins("JOIN properties ON enquiries.property_id = properties.id").
		Preload("Property")

	if model.Role(claims.Role) != model.RoleAdmin {
		query = query.Where("properties.agent_id = ?", claims.UserID)
	}
	if status := model.EnquiryStatus(c.Query("status")); status != "" {
		if !status.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid status value",
			})
		}
		query = query.Where("enquiries.status = ?", status)
	}
	if propertyID := c.QueryInt("property_id"); propertyID > 0 {
		query = query.Where("enquiries.property_id = ?", propertyID)
	}

	var enquiries []model.Enquiry
	if err := query.Order("enquiries.created_at desc").Find(&enquiries).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch enquiries",
		})
	}

	return c.JSON(enquiries)
}

func UpdateEnquiryStatus(c *fiber.Ctx) error {
	claims := currentClaims(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid enquiry ID",
		})
	}

	var enquiry model.Enquiry
	if err := database.GetDB().Preload("Property").First(&enquiry, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Enquiry not found",
		})
	}
	if !canManage(claims, &enquiry.Property) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to update this enquiry",
		})
	}

	input := struct {
		Status model.EnquiryStatus `json:"status"`
	}{}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if !input.Status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":          "Invalid status value",
			"valid_statuses": model.EnquiryStatuses,
		})
	}

	if err := database.GetDB().Model(&enquiry).Update("status", input.Status).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update enquiry status",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Enquiry status updated successfully",
		"enquiry": enquiry,
	})
}
