// Package pricing models the five billing-model shapes as a tagged union.
// Exactly one variant's fields are meaningful for a given model_type; decoding
// applies variant defaults only when the variant's sentinel key is absent, so
// editing an existing model never clobbers stored values.
package pricing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

type ModelType string

const (
	ModelAgent    ModelType = "agent"
	ModelActivity ModelType = "activity"
	ModelOutcome  ModelType = "outcome"
	ModelWorkflow ModelType = "workflow"
	ModelHybrid   ModelType = "hybrid"
)

var (
	ErrUnknownModelType   = errors.New("unknown pricing model type")
	ErrHybridNotSupported = errors.New("hybrid pricing models are not supported yet")
)

var validate = validator.New()

// ChargeLine is one billable entry a pricing config produces for a billing
// period. Metadata carries the item_type-specific fields.
type ChargeLine struct {
	Description string
	Quantity    int
	UnitPrice   float64
	Amount      float64
	ItemType    string
	Metadata    map[string]any
}

// Config is one variant of the pricing tagged union.
type Config interface {
	Type() ModelType
	Validate() error
	// Charge maps a period's metered units onto billable line items.
	Charge(units int) []ChargeLine

	// sentinelKey is the field whose absence in a raw document means the
	// variant was never initialized and defaults must be applied.
	sentinelKey() string
	applyDefaults()
}

// Decode parses raw JSON into the variant selected by modelType. Unknown keys
// in raw are tolerated and ignored. Defaults are applied iff the variant's
// sentinel key is absent from the document.
func Decode(modelType string, raw []byte) (Config, error) {
	var cfg Config
	switch ModelType(modelType) {
	case ModelAgent:
		cfg = &AgentConfig{}
	case ModelActivity:
		cfg = &ActivityConfig{}
	case ModelOutcome:
		cfg = &OutcomeConfig{}
	case ModelWorkflow:
		cfg = &WorkflowConfig{}
	case ModelHybrid:
		cfg = &HybridConfig{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModelType, modelType)
	}

	if len(raw) == 0 {
		cfg.applyDefaults()
		return cfg, nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("decode pricing config: %w", err)
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("decode pricing config: %w", err)
	}
	if _, initialized := keys[cfg.sentinelKey()]; !initialized {
		cfg.applyDefaults()
	}
	return cfg, nil
}

// Encode marshals a config back to its flat JSON document.
func Encode(cfg Config) ([]byte, error) {
	return json.Marshal(cfg)
}
