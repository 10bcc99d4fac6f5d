package billing

import (
	"encoding/json"
	"fmt"

	"metering-backend/models"
)

// Line-item metadata is a closed set of per-item-type variants. Decoding is
// forward-tolerant: unknown keys in stored documents are ignored.

type SubscriptionMetadata struct {
	AgentTier             string `json:"agent_tier"`
	VolumeDiscountApplied bool   `json:"volume_discount_applied"`
}

type UsageMetadata struct {
	ActivityType  string           `json:"activity_type"`
	TierBreakdown []map[string]any `json:"tier_breakdown,omitempty"`
}

type OutcomeMetadata struct {
	OutcomeValue  float64 `json:"outcome_value"`
	OutcomeType   string  `json:"outcome_type"`
	PercentageFee float64 `json:"percentage_fee"`
}

type WorkflowMetadata struct {
	WorkflowType  string `json:"workflow_type"`
	WorkflowCount int    `json:"workflow_count"`
}

// DecodeMetadata parses a line item's metadata into the variant selected by
// its item_type. Empty metadata yields the variant's zero value.
func DecodeMetadata(item models.InvoiceLineItem) (any, error) {
	var dst any
	switch item.ItemType {
	case models.ItemTypeSubscription:
		dst = &SubscriptionMetadata{}
	case models.ItemTypeUsage:
		dst = &UsageMetadata{}
	case models.ItemTypeOutcome:
		dst = &OutcomeMetadata{}
	case models.ItemTypeWorkflow:
		dst = &WorkflowMetadata{}
	default:
		return nil, fmt.Errorf("unknown item type %q", item.ItemType)
	}
	if len(item.Metadata) == 0 {
		return dst, nil
	}
	if err := json.Unmarshal(item.Metadata, dst); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", item.ItemType, err)
	}
	return dst, nil
}
