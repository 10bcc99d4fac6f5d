package controllers

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"metering-backend/database"
	"metering-backend/middlewares"
	"metering-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const keyPrefixLen = 12

type createAPIKeyDTO struct {
	Name string `json:"name" validate:"required"`
}

// CreateAPIKey mints a new key. The full secret appears in this response and
// nowhere else; only its prefix and sha256 hash are stored.
func CreateAPIKey(c *fiber.Ctx) error {
	var dto createAPIKeyDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
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

	secret := "mk_" + strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	sum := sha256.Sum256([]byte(secret))

	key := models.APIKey{
		OrgID:     orgID,
		Name:      strings.TrimSpace(dto.Name),
		KeyPrefix: secret[:keyPrefixLen],
		KeyHash:   hex.EncodeToString(sum[:]),
	}
	if err := db.Create(&key).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not create API key",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"api_key": key,
		"token":   secret, // shown exactly once
	})
}

func GetAPIKeys(c *fiber.Ctx) error {
	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	var keys []models.APIKey
	if err := db.Scopes(database.OrgScope(orgID)).Order("id").Find(&keys).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load API keys",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"api_keys": keys,
		"message":  "success",
	})
}

// GetAllOrgAPIKeys lists keys across every org the user owns.
func GetAllOrgAPIKeys(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	var keys []models.APIKey
	if err := db.
		Joins("JOIN organizations ON organizations.id = api_keys.org_id").
		Where("organizations.owner_id = ?", userID).
		Order("api_keys.id").
		Find(&keys).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load API keys",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"api_keys": keys,
		"message":  "success",
	})
}

func DeleteAPIKey(c *fiber.Ctx) error {
	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	res := db.Scopes(database.OrgScope(orgID)).Delete(&models.APIKey{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete API key",
			"error":   res.Error.Error(),
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "API key not found"})
	}
	return c.JSON(fiber.Map{"message": "success"})
}
