package pricing

import "fmt"

// OutcomeConfig bills a percentage of the value attributed to each successful
// outcome inside the attribution window.
type OutcomeConfig struct {
	OutcomeName           string  `json:"outcome_outcome_name"`
	OutcomeType           string  `json:"outcome_outcome_type" validate:"omitempty,oneof=conversion resolution booking custom"`
	PercentageFee         float64 `json:"outcome_percentage_fee" validate:"gte=0,lte=100"`
	AttributionWindowDays int     `json:"outcome_attribution_window_days" validate:"gte=0"`
	MinimumOutcomeValue   float64 `json:"outcome_minimum_value" validate:"gte=0"`
	// Average value per outcome; used for estimation when no attribution data
	// is available yet.
	EstimatedOutcomeValue float64 `json:"outcome_estimated_value" validate:"gte=0"`
}

func (c *OutcomeConfig) Type() ModelType { return ModelOutcome }

func (c *OutcomeConfig) sentinelKey() string { return "outcome_outcome_name" }

func (c *OutcomeConfig) applyDefaults() {
	c.OutcomeName = "Conversion"
	c.OutcomeType = "conversion"
	c.PercentageFee = 5
	c.AttributionWindowDays = 30
	c.MinimumOutcomeValue = 0
	c.EstimatedOutcomeValue = 100
}

func (c *OutcomeConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.OutcomeName == "" {
		return fmt.Errorf("outcome name is required")
	}
	return nil
}

func (c *OutcomeConfig) Charge(units int) []ChargeLine {
	outcomeValue := float64(units) * c.EstimatedOutcomeValue
	fee := outcomeValue * c.PercentageFee / 100
	perUnit := 0.0
	if units > 0 {
		perUnit = fee / float64(units)
	}
	return []ChargeLine{{
		Description: fmt.Sprintf("%s fee (%.1f%% of attributed value)", c.OutcomeName, c.PercentageFee),
		Quantity:    units,
		UnitPrice:   perUnit,
		Amount:      fee,
		ItemType:    "outcome",
		Metadata: map[string]any{
			"outcome_value":  outcomeValue,
			"outcome_type":   c.OutcomeType,
			"percentage_fee": c.PercentageFee,
		},
	}}
}
