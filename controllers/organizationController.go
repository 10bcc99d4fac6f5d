package controllers

import (
	"strings"

	"metering-backend/database"
	"metering-backend/middlewares"
	"metering-backend/models"

	"github.com/gofiber/fiber/v2"
)

// GetOrganizations lists the organizations owned by the authenticated user.
func GetOrganizations(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	var orgs []models.Organization
	if err := db.Where("owner_id = ?", userID).Order("created_at").Find(&orgs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load organizations",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"organizations": orgs,
		"message":       "success",
	})
}

type createOrgDTO struct {
	Name string `json:"name" validate:"required"`
}

func CreateOrganization(c *fiber.Ctx) error {
	var dto createOrgDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	userID, _ := c.Locals("userID").(string)

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	org := models.Organization{
		Name:    strings.TrimSpace(dto.Name),
		OwnerId: userID,
	}
	if err := db.Create(&org).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not create organization",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(org)
}
