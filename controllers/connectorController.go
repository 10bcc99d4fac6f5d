package controllers

import (
	"net/http"
	"time"

	"metering-backend/database"
	"metering-backend/middlewares"
	"metering-backend/models"
	"metering-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type connectorDTO struct {
	Name     string         `json:"name" validate:"required"`
	Provider string         `json:"provider" validate:"required"`
	Endpoint string         `json:"endpoint" validate:"omitempty,url"`
	Config   datatypes.JSON `json:"config"`
}

func CreateConnector(c *fiber.Ctx) error {
	var dto connectorDTO
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

	connector := models.Connector{
		OrgID:    orgID,
		Name:     dto.Name,
		Provider: dto.Provider,
		Endpoint: dto.Endpoint,
		Config:   dto.Config,
		Active:   true,
	}
	if err := db.Create(&connector).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not create connector",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(connector)
}

func GetConnectors(c *fiber.Ctx) error {
	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	var connectors []models.Connector
	if err := db.Scopes(database.OrgScope(orgID)).Order("id").Find(&connectors).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load connectors",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"connectors": connectors,
		"message":    "success",
	})
}

type updateConnectorDTO struct {
	Name     *string         `json:"name"`
	Provider *string         `json:"provider"`
	Endpoint *string         `json:"endpoint" validate:"omitempty,url"`
	Config   *datatypes.JSON `json:"config"`
	Active   *bool           `json:"active"`
}

func UpdateConnector(c *fiber.Ctx) error {
	var dto updateConnectorDTO
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

	var connector models.Connector
	if err := db.Scopes(database.OrgScope(orgID)).
		First(&connector, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Connector not found"})
	}

	updates := utils.UpdatesFromPtrDTO(&dto, nil)
	if len(updates) > 0 {
		if err := db.Model(&connector).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Could not update connector",
				"error":   err.Error(),
			})
		}
	}
	db.First(&connector, connector.ID)
	return c.JSON(connector)
}

func DeleteConnector(c *fiber.Ctx) error {
	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	res := db.Scopes(database.OrgScope(orgID)).Delete(&models.Connector{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete connector",
			"error":   res.Error.Error(),
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Connector not found"})
	}
	return c.JSON(fiber.Map{"message": "success"})
}

// TestConnector checks the connector endpoint and records the attempt.
func TestConnector(c *fiber.Ctx) error {
	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	var connector models.Connector
	if err := db.Scopes(database.OrgScope(orgID)).
		First(&connector, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Connector not found"})
	}
	if connector.Endpoint == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Connector has no endpoint"})
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Head(connector.Endpoint)
	reachable := err == nil && resp.StatusCode < 500
	if resp != nil {
		resp.Body.Close()
	}

	now := time.Now().UTC()
	db.Model(&connector).Update("last_tested_at", &now)

	if !reachable {
		msg := "endpoint unreachable"
		if err != nil {
			msg = err.Error()
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"reachable": false,
			"message":   msg,
		})
	}
	return c.JSON(fiber.Map{
		"reachable": true,
		"message":   "success",
	})
}

// ExtractConnector starts a usage extraction run for the connector. Actual
// extraction is performed by the upstream system; this records and returns the
// run.
func ExtractConnector(c *fiber.Ctx) error {
	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	var connector models.Connector
	if err := db.Scopes(database.OrgScope(orgID)).
		First(&connector, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Connector not found"})
	}
	if !connector.Active {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Connector is inactive"})
	}

	run := models.ExtractionRun{
		ConnectorID: connector.ID,
		Status:      "running",
		StartedAt:   time.Now().UTC(),
	}
	if err := db.Create(&run).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not start extraction",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(run)
}
