package pricing

import "fmt"

// WorkflowTypeRate prices one class of workflow execution.
type WorkflowTypeRate struct {
	TypeName         string  `json:"type_name"`
	PricePerWorkflow float64 `json:"price_per_workflow" validate:"gte=0"`
	EstimatedVolume  int     `json:"estimated_volume" validate:"gte=0"`
}

// CommitmentTier discounts workflow pricing against a committed volume.
type CommitmentTier struct {
	Name               string  `json:"name"`
	MinimumWorkflows   int     `json:"minimum_workflows" validate:"gte=0"`
	DiscountPercentage float64 `json:"discount_percentage" validate:"gte=0,lte=100"`
}

// WorkflowConfig bills a platform fee plus per-workflow execution charges,
// discounted by the highest commitment tier the period's volume reaches.
type WorkflowConfig struct {
	BasePlatformFee      float64            `json:"workflow_base_platform_fee" validate:"gte=0"`
	PlatformFeeFrequency string             `json:"workflow_platform_fee_frequency" validate:"omitempty,oneof=monthly quarterly yearly"`
	WorkflowTypes        []WorkflowTypeRate `json:"workflow_types" validate:"dive"`
	CommitmentTiers      []CommitmentTier   `json:"workflow_commitment_tiers" validate:"dive"`
}

func (c *WorkflowConfig) Type() ModelType { return ModelWorkflow }

func (c *WorkflowConfig) sentinelKey() string { return "workflow_base_platform_fee" }

func (c *WorkflowConfig) applyDefaults() {
	c.BasePlatformFee = 500
	c.PlatformFeeFrequency = "monthly"
	c.WorkflowTypes = []WorkflowTypeRate{
		{TypeName: "standard", PricePerWorkflow: 2.5, EstimatedVolume: 100},
	}
	c.CommitmentTiers = nil
}

func (c *WorkflowConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if len(c.WorkflowTypes) == 0 {
		return fmt.Errorf("at least one workflow type is required")
	}
	return nil
}

// discountFor returns the discount of the highest commitment tier whose
// minimum the given volume reaches.
func (c *WorkflowConfig) discountFor(volume int) float64 {
	best := 0.0
	for _, t := range c.CommitmentTiers {
		if volume >= t.MinimumWorkflows && t.DiscountPercentage > best {
			best = t.DiscountPercentage
		}
	}
	return best
}

func (c *WorkflowConfig) Charge(units int) []ChargeLine {
	lines := []ChargeLine{{
		Description: "Platform fee",
		Quantity:    1,
		UnitPrice:   c.BasePlatformFee,
		Amount:      c.BasePlatformFee,
		ItemType:    "subscription",
		Metadata:    map[string]any{"workflow_type": "platform"},
	}}

	discount := c.discountFor(units)
	for _, wt := range c.WorkflowTypes {
		count := wt.EstimatedVolume
		if len(c.WorkflowTypes) == 1 {
			// Single workflow type: bill actual metered volume against it.
			count = units
		}
		price := wt.PricePerWorkflow * (1 - discount/100)
		lines = append(lines, ChargeLine{
			Description: fmt.Sprintf("Workflow executions (%s)", wt.TypeName),
			Quantity:    count,
			UnitPrice:   price,
			Amount:      float64(count) * price,
			ItemType:    "workflow",
			Metadata: map[string]any{
				"workflow_type":  wt.TypeName,
				"workflow_count": count,
			},
		})
	}
	return lines
}
