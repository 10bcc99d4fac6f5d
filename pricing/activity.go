package pricing

import "fmt"

// VolumeTier prices a unit range; MaxUnits 0 means unbounded.
type VolumeTier struct {
	MinUnits     int     `json:"min_units" validate:"gte=0"`
	MaxUnits     int     `json:"max_units" validate:"gte=0"`
	PricePerUnit float64 `json:"price_per_unit" validate:"gte=0"`
}

// ActivityConfig bills per metered unit, optionally through graduated volume
// tiers on top of a base fee.
type ActivityConfig struct {
	PricePerUnit         float64      `json:"activity_price_per_unit" validate:"gte=0"`
	UnitType             string       `json:"activity_unit_type" validate:"omitempty,oneof=action token api_call minute"`
	BaseAgentFee         float64      `json:"activity_base_agent_fee" validate:"gte=0"`
	VolumePricingEnabled bool         `json:"activity_volume_pricing_enabled"`
	VolumeTiers          []VolumeTier `json:"activity_volume_tiers" validate:"dive"`
}

func (c *ActivityConfig) Type() ModelType { return ModelActivity }

func (c *ActivityConfig) sentinelKey() string { return "activity_price_per_unit" }

func (c *ActivityConfig) applyDefaults() {
	c.PricePerUnit = 0.05
	c.UnitType = "action"
	c.BaseAgentFee = 0
	c.VolumePricingEnabled = false
	c.VolumeTiers = nil
}

func (c *ActivityConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.VolumePricingEnabled && len(c.VolumeTiers) == 0 {
		return fmt.Errorf("volume pricing enabled without tiers")
	}
	return nil
}

// tierBreakdown prices units through the graduated tiers, returning per-tier
// amounts and the total.
func (c *ActivityConfig) tierBreakdown(units int) ([]map[string]any, float64) {
	var rows []map[string]any
	var total float64
	remaining := units
	for _, t := range c.VolumeTiers {
		if remaining <= 0 {
			break
		}
		span := remaining
		if t.MaxUnits > 0 {
			width := t.MaxUnits - t.MinUnits
			if span > width {
				span = width
			}
		}
		amount := float64(span) * t.PricePerUnit
		rows = append(rows, map[string]any{
			"min_units":      t.MinUnits,
			"max_units":      t.MaxUnits,
			"units":          span,
			"price_per_unit": t.PricePerUnit,
			"amount":         amount,
		})
		total += amount
		remaining -= span
	}
	return rows, total
}

func (c *ActivityConfig) Charge(units int) []ChargeLine {
	var lines []ChargeLine
	if c.BaseAgentFee > 0 {
		lines = append(lines, ChargeLine{
			Description: "Activity base fee",
			Quantity:    1,
			UnitPrice:   c.BaseAgentFee,
			Amount:      c.BaseAgentFee,
			ItemType:    "subscription",
			Metadata:    map[string]any{"activity_type": c.UnitType},
		})
	}

	meta := map[string]any{"activity_type": c.UnitType}
	unitPrice := c.PricePerUnit
	amount := float64(units) * unitPrice
	if c.VolumePricingEnabled && len(c.VolumeTiers) > 0 {
		breakdown, tiered := c.tierBreakdown(units)
		meta["tier_breakdown"] = breakdown
		amount = tiered
		if units > 0 {
			unitPrice = tiered / float64(units)
		}
	}
	lines = append(lines, ChargeLine{
		Description: fmt.Sprintf("Usage (%d %ss)", units, c.UnitType),
		Quantity:    units,
		UnitPrice:   unitPrice,
		Amount:      amount,
		ItemType:    "usage",
		Metadata:    meta,
	})
	return lines
}
