package controllers

import (
	"metering-backend/database"
	"metering-backend/middlewares"
	"metering-backend/models"
	"metering-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type createAgentDTO struct {
	Name              string `json:"name" validate:"required"`
	Description       string `json:"description"`
	PricingModelID    *uint  `json:"pricing_model_id"`
	MonthlyUsageUnits int    `json:"monthly_usage_units" validate:"gte=0"`
}

func CreateAgent(c *fiber.Ctx) error {
	var dto createAgentDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizeDTO(&dto)

	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	agent := models.Agent{
		OrgID:             orgID,
		Name:              dto.Name,
		Description:       dto.Description,
		Status:            "active",
		PricingModelID:    dto.PricingModelID,
		MonthlyUsageUnits: dto.MonthlyUsageUnits,
	}
	if err := db.Create(&agent).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not create agent",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(agent)
}

func GetAgents(c *fiber.Ctx) error {
	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	var agents []models.Agent
	if err := db.Scopes(database.OrgScope(orgID)).Order("id").Find(&agents).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load agents",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"agents":  agents,
		"message": "success",
	})
}

type updateAgentDTO struct {
	Name              *string `json:"name"`
	Description       *string `json:"description"`
	Status            *string `json:"status" validate:"omitempty,oneof=active paused"`
	PricingModelID    *uint   `json:"pricing_model_id"`
	MonthlyUsageUnits *int    `json:"monthly_usage_units" validate:"omitempty,gte=0"`
}

func UpdateAgent(c *fiber.Ctx) error {
	var dto updateAgentDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&dto)

	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	var agent models.Agent
	if err := db.Scopes(database.OrgScope(orgID)).
		First(&agent, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Agent not found"})
	}

	updates := utils.UpdatesFromPtrDTO(&dto, nil)
	if len(updates) > 0 {
		if err := db.Model(&agent).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Could not update agent",
				"error":   err.Error(),
			})
		}
	}

	db.First(&agent, agent.ID)
	return c.JSON(agent)
}

func DeleteAgent(c *fiber.Ctx) error {
	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	res := db.Scopes(database.OrgScope(orgID)).Delete(&models.Agent{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete agent",
			"error":   res.Error.Error(),
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Agent not found"})
	}
	return c.JSON(fiber.Map{"message": "success"})
}
