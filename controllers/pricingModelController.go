package controllers

import (
	"encoding/json"
	"errors"
	"strings"

	"metering-backend/database"
	"metering-backend/models"
	"metering-backend/pricing"
	"metering-backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type pricingModelDTO struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ModelType   string          `json:"model_type"`
	Config      json.RawMessage `json:"config"`
}

// decodePricingDTO parses and validates the tagged-union payload. Hybrid is
// decodable but never valid for submission.
func decodePricingDTO(c *fiber.Ctx, dto *pricingModelDTO) (pricing.Config, error) {
	if err := c.BodyParser(dto); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	dto.Name = strings.TrimSpace(dto.Name)
	if dto.Name == "" {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "name is required")
	}

	cfg, err := pricing.Decode(dto.ModelType, dto.Config)
	if err != nil {
		if errors.Is(err, pricing.ErrUnknownModelType) {
			return nil, fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return nil, ve // 422 with per-field info via the error handler
		}
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return cfg, nil
}

func CreatePricingModel(c *fiber.Ctx) error {
	var dto pricingModelDTO
	cfg, err := decodePricingDTO(c, &dto)
	if err != nil {
		return err
	}

	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	raw, err := pricing.Encode(cfg)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Could not encode config"})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	model := models.PricingModel{
		OrgID:       orgID,
		Name:        dto.Name,
		Description: strings.TrimSpace(dto.Description),
		ModelType:   string(cfg.Type()),
		Config:      datatypes.JSON(raw),
	}
	if err := db.Create(&model).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not create pricing model",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(model)
}

func GetPricingModels(c *fiber.Ctx) error {
	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	var pms []models.PricingModel
	if err := db.Scopes(database.OrgScope(orgID)).Order("id").Find(&pms).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load pricing models",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"pricing_models": pms,
		"message":        "success",
	})
}

// UpdatePricingModel replaces the config wholesale. Switching model_type
// re-initializes variant fields to defaults unless the new variant's sentinel
// key is present in the submitted config, so edits never leak fields across
// variants.
func UpdatePricingModel(c *fiber.Ctx) error {
	var dto pricingModelDTO
	cfg, err := decodePricingDTO(c, &dto)
	if err != nil {
		return err
	}

	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	var model models.PricingModel
	if err := db.Scopes(database.OrgScope(orgID)).
		First(&model, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Pricing model not found"})
	}

	raw, err := pricing.Encode(cfg)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Could not encode config"})
	}

	updates := map[string]any{
		"name":        dto.Name,
		"description": strings.TrimSpace(dto.Description),
		"model_type":  string(cfg.Type()),
		"config":      datatypes.JSON(raw),
	}
	if err := db.Model(&model).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not update pricing model",
			"error":   err.Error(),
		})
	}

	db.First(&model, model.ID)
	return c.JSON(model)
}

func DeletePricingModel(c *fiber.Ctx) error {
	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	res := db.Scopes(database.OrgScope(orgID)).Delete(&models.PricingModel{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete pricing model",
			"error":   res.Error.Error(),
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Pricing model not found"})
	}
	return c.JSON(fiber.Map{"message": "success"})
}

type previewDTO struct {
	ModelType string          `json:"model_type"`
	Config    json.RawMessage `json:"config"`
	Units     int             `json:"units"`
}

// PreviewPricingModel computes the illustrative price for a config without
// persisting anything. Purely derived; never feeds the stored model.
func PreviewPricingModel(c *fiber.Ctx) error {
	var dto previewDTO
	if err := c.BodyParser(&dto); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cfg, err := pricing.Decode(dto.ModelType, dto.Config)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	preview := pricing.ComputePreview(cfg, dto.Units)
	preview.EstimatedMonthly = utils.Round2(preview.EstimatedMonthly)
	return c.JSON(preview)
}
