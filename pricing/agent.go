package pricing

import "fmt"

// AgentConfig bills a flat per-agent subscription fee, optionally discounted
// above a volume threshold.
type AgentConfig struct {
	BaseAgentFee             float64 `json:"agent_base_agent_fee" validate:"gte=0"`
	BillingFrequency         string  `json:"agent_billing_frequency" validate:"omitempty,oneof=monthly quarterly yearly"`
	SetupFee                 float64 `json:"agent_setup_fee" validate:"gte=0"`
	Tier                     string  `json:"agent_tier" validate:"omitempty,oneof=starter professional enterprise"`
	VolumeDiscountEnabled    bool    `json:"agent_volume_discount_enabled"`
	VolumeDiscountThreshold  int     `json:"agent_volume_discount_threshold" validate:"gte=0"`
	VolumeDiscountPercentage float64 `json:"agent_volume_discount_percentage" validate:"gte=0,lte=100"`
}

func (c *AgentConfig) Type() ModelType { return ModelAgent }

func (c *AgentConfig) sentinelKey() string { return "agent_base_agent_fee" }

func (c *AgentConfig) applyDefaults() {
	c.BaseAgentFee = 750
	c.BillingFrequency = "monthly"
	c.SetupFee = 0
	c.Tier = "professional"
	c.VolumeDiscountEnabled = false
	c.VolumeDiscountThreshold = 0
	c.VolumeDiscountPercentage = 10
}

func (c *AgentConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.VolumeDiscountEnabled && c.VolumeDiscountThreshold <= 0 {
		return fmt.Errorf("volume discount enabled without a threshold")
	}
	return nil
}

func (c *AgentConfig) Charge(units int) []ChargeLine {
	fee := c.BaseAgentFee
	discountApplied := false
	if c.VolumeDiscountEnabled && c.VolumeDiscountThreshold > 0 && units >= c.VolumeDiscountThreshold {
		fee = fee * (1 - c.VolumeDiscountPercentage/100)
		discountApplied = true
	}
	return []ChargeLine{{
		Description: fmt.Sprintf("Agent subscription (%s tier)", c.Tier),
		Quantity:    1,
		UnitPrice:   fee,
		Amount:      fee,
		ItemType:    "subscription",
		Metadata: map[string]any{
			"agent_tier":              c.Tier,
			"volume_discount_applied": discountApplied,
		},
	}}
}
