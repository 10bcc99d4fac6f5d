package controllers

import (
	"net/mail"
	"strings"
	"time"

	"metering-backend/database"
	"metering-backend/middlewares"
	"metering-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type signupDTO struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	// Optional: name the first organization; defaults to "<full_name>'s org".
	OrganizationName string `json:"organization_name"`
}

// Signup creates the user and provisions their first organization in one
// transaction.
func Signup(c *fiber.Ctx) error {
	var dto signupDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	var mailExist models.User
	database.DB.Where("email = ?", dto.Email).First(&mailExist)
	if mailExist.Email != "" {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "email already exists",
		})
	}

	tx := database.DB.Begin()

	user := models.User{
		FullName: strings.TrimSpace(dto.FullName),
		Email:    strings.TrimSpace(dto.Email),
	}
	user.SetPassword(dto.Password)
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Could not create user",
			"error":   err.Error(),
		})
	}

	orgName := strings.TrimSpace(dto.OrganizationName)
	if orgName == "" {
		orgName = user.FullName + "'s org"
	}
	org := models.Organization{
		Name:    orgName,
		OwnerId: user.Id,
	}
	if err := tx.Create(&org).Error; err != nil {
		tx.Rollback()
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Could not create organization",
			"error":   err.Error(),
		})
	}

	user.DefaultOrgId = org.Id
	if err := tx.Updates(&user).Error; err != nil {
		tx.Rollback()
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Signup failed",
			"error":   err.Error(),
		})
	}

	tx.Commit()

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":        user.Id,
			"full_name": user.FullName,
			"email":     user.Email,
		},
		"organization": org,
	})
}

func Login(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return err
	}

	var user models.User

	if _, err := mail.ParseAddress(data["email"]); err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Invalid email format",
		})
	}

	database.DB.Where("email = ?", data["email"]).First(&user)

	if _, err := uuid.Parse(user.Id); err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	if err := user.ComparePassword(data["password"]); err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	token, err := middlewares.GenerateJWT(user.Id, user.DefaultOrgId)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"message": "Could not issue token",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"token":  token,
		"org_id": user.DefaultOrgId,
		"user": fiber.Map{
			"id":    user.Id,
			"name":  user.FullName,
			"email": user.Email,
		},
	})
}

func Logout(c *fiber.Ctx) error {
	cookie := fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	}
	c.Cookie(&cookie)
	return c.JSON(fiber.Map{
		"message": "success",
	})
}
