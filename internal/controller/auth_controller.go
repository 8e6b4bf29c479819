package controller

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"realty_backend/internal/model"
	"realty_backend/pkg/database"
	"realty_backend/pkg/email"
	"realty_backend/pkg/utils/jwt"
)

const minPasswordLength = 6

type RegisterInput struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Name     string     `json:"name"`
	Role     model.Role `json:"role"`
	Phone    string     `json:"phone"`
	Location string     `json:"location"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// validate normalises the input. Self registration may only pick the user
// or agent role.
func (in *RegisterInput) validate() error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)

	if _, err := mail.ParseAddress(in.Email); err != nil {
		return errors.New("invalid email address")
	}
	if len(in.Password) < minPasswordLength {
		return errors.New("password must be at least 6 characters")
	}
	if in.Name == "" {
		return errors.New("name is required")
	}
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	if in.Role != model.RoleUser && in.Role != model.RoleAgent {
		return errors.New("role must be user or agent")
	}
	return nil
}

func Register(c *fiber.Ctx) error {
	input := new(RegisterInput)
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

	var existingUser model.User
	if err := database.GetDB().Where("email = ?", input.Email).First(&existingUser).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email already exists",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not hash password",
		})
	}

	user := model.User{
		Email:    input.Email,
		Password: string(hashedPassword),
		Name:     input.Name,
		Role:     input.Role,
		Phone:    input.Phone,
		Location: input.Location,
	}

	if err := database.GetDB().Create(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create user",
		})
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate token",
		})
	}

	// a new agent shows up in the directory
	if user.IsAgent() {
		afterWrite()
	}
	if opts.Mailer != nil {
		data := email.WelcomeEmailData{Name: user.Name, IsAgent: user.IsAgent()}
		go func(to string) {
			if err := opts.Mailer.SendWelcomeEmail(context.Background(), to, data); err != nil {
				log.Printf("Could not send welcome email: %v", err)
			}
		}(user.Email)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"token":   token,
		"user":    user.GetPublicProfile(),
	})
}

func Login(c *fiber.Ctx) error {
	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	var user model.User
	addr := strings.ToLower(strings.TrimSpace(input.Email))
	if err := database.GetDB().Where("email = ?", addr).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate token",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user.GetPublicProfile(),
	})
}

// GetMe returns the profile of the authenticated user.
func GetMe(c *fiber.Ctx) error {
	claims := currentClaims(c)

	var user model.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch user",
		})
	}

	profile := user.GetPublicProfile()
	profile["created_at"] = user.CreatedAt
	return c.JSON(fiber.Map{"user": profile})
}
