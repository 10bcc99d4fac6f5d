package pricing

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAppliesDefaultsOnlyWhenUninitialized(t *testing.T) {
	// Sentinel absent: variant was never initialized, defaults apply.
	cfg, err := Decode("agent", []byte(`{"agent_tier": "starter"}`))
	require.NoError(t, err)
	agent := cfg.(*AgentConfig)
	assert.Equal(t, 750.0, agent.BaseAgentFee)
	assert.Equal(t, "professional", agent.Tier) // defaults overwrite partial state

	// Sentinel present: stored values survive, even zero ones.
	cfg, err = Decode("agent", []byte(`{"agent_base_agent_fee": 0, "agent_tier": "starter"}`))
	require.NoError(t, err)
	agent = cfg.(*AgentConfig)
	assert.Equal(t, 0.0, agent.BaseAgentFee)
	assert.Equal(t, "starter", agent.Tier)

	// Empty document behaves like a fresh form.
	cfg, err = Decode("workflow", nil)
	require.NoError(t, err)
	wf := cfg.(*WorkflowConfig)
	assert.Equal(t, 500.0, wf.BasePlatformFee)
	require.Len(t, wf.WorkflowTypes, 1)
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode("freemium", nil)
	assert.ErrorIs(t, err, ErrUnknownModelType)
}

func TestVariantFieldIsolation(t *testing.T) {
	// A document carrying leftover agent fields decoded as activity must not
	// leak them back out on encode.
	raw := []byte(`{
		"activity_price_per_unit": 0.25,
		"activity_unit_type": "token",
		"agent_base_agent_fee": 750,
		"agent_setup_fee": 100
	}`)
	cfg, err := Decode("activity", raw)
	require.NoError(t, err)

	out, err := Encode(cfg)
	require.NoError(t, err)

	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &keys))
	assert.Contains(t, keys, "activity_price_per_unit")
	assert.NotContains(t, keys, "agent_base_agent_fee")
	assert.NotContains(t, keys, "agent_setup_fee")
}

func TestHybridNeverValidates(t *testing.T) {
	cfg, err := Decode("hybrid", []byte(`{"anything": true}`))
	require.NoError(t, err) // stored rows must stay readable
	assert.ErrorIs(t, cfg.Validate(), ErrHybridNotSupported)
	assert.Empty(t, cfg.Charge(100))
}

func TestAgentValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     AgentConfig
		wantErr bool
	}{
		{name: "valid", cfg: AgentConfig{BaseAgentFee: 500, Tier: "starter"}},
		{name: "negative_fee", cfg: AgentConfig{BaseAgentFee: -1}, wantErr: true},
		{name: "bad_tier", cfg: AgentConfig{BaseAgentFee: 1, Tier: "platinum"}, wantErr: true},
		{name: "discount_without_threshold", cfg: AgentConfig{BaseAgentFee: 1, VolumeDiscountEnabled: true}, wantErr: true},
		{name: "discount_with_threshold", cfg: AgentConfig{BaseAgentFee: 1, VolumeDiscountEnabled: true, VolumeDiscountThreshold: 100, VolumeDiscountPercentage: 10}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAgentChargeVolumeDiscount(t *testing.T) {
	cfg := &AgentConfig{
		BaseAgentFee:             1000,
		Tier:                     "enterprise",
		VolumeDiscountEnabled:    true,
		VolumeDiscountThreshold:  500,
		VolumeDiscountPercentage: 20,
	}

	below := cfg.Charge(499)
	require.Len(t, below, 1)
	assert.Equal(t, 1000.0, below[0].Amount)
	assert.Equal(t, false, below[0].Metadata["volume_discount_applied"])

	above := cfg.Charge(500)
	assert.Equal(t, 800.0, above[0].Amount)
	assert.Equal(t, true, above[0].Metadata["volume_discount_applied"])

	// Disabled discount never fires, whatever the volume.
	cfg.VolumeDiscountEnabled = false
	assert.Equal(t, 1000.0, cfg.Charge(10000)[0].Amount)
}

func TestActivityTierBreakdown(t *testing.T) {
	cfg := &ActivityConfig{
		PricePerUnit:         0.10,
		UnitType:             "api_call",
		VolumePricingEnabled: true,
		VolumeTiers: []VolumeTier{
			{MinUnits: 0, MaxUnits: 1000, PricePerUnit: 0.10},
			{MinUnits: 1000, MaxUnits: 5000, PricePerUnit: 0.05},
			{MinUnits: 5000, MaxUnits: 0, PricePerUnit: 0.02},
		},
	}

	lines := cfg.Charge(6000)
	require.Len(t, lines, 1)
	// 1000*0.10 + 4000*0.05 + 1000*0.02
	assert.InDelta(t, 320.0, lines[0].Amount, 1e-9)

	breakdown, ok := lines[0].Metadata["tier_breakdown"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, breakdown, 3)
	assert.Equal(t, 1000, breakdown[0]["units"])
	assert.Equal(t, 4000, breakdown[1]["units"])
	assert.Equal(t, 1000, breakdown[2]["units"])
}

func TestWorkflowCommitmentDiscount(t *testing.T) {
	cfg := &WorkflowConfig{
		BasePlatformFee: 300,
		WorkflowTypes: []WorkflowTypeRate{
			{TypeName: "standard", PricePerWorkflow: 2.0},
		},
		CommitmentTiers: []CommitmentTier{
			{Name: "bronze", MinimumWorkflows: 100, DiscountPercentage: 5},
			{Name: "gold", MinimumWorkflows: 1000, DiscountPercentage: 15},
		},
	}

	lines := cfg.Charge(1200)
	require.Len(t, lines, 2)
	assert.Equal(t, 300.0, lines[0].Amount) // platform fee, undiscounted
	assert.InDelta(t, 1.7, lines[1].UnitPrice, 1e-9)
	assert.InDelta(t, 2040.0, lines[1].Amount, 1e-9)
	assert.Equal(t, 1200, lines[1].Metadata["workflow_count"])
}

func TestOutcomeCharge(t *testing.T) {
	cfg := &OutcomeConfig{
		OutcomeName:           "Booking",
		OutcomeType:           "booking",
		PercentageFee:         10,
		EstimatedOutcomeValue: 50,
	}
	lines := cfg.Charge(20)
	require.Len(t, lines, 1)
	assert.InDelta(t, 100.0, lines[0].Amount, 1e-9) // 20*50 = 1000 value, 10% fee
	assert.Equal(t, 1000.0, lines[0].Metadata["outcome_value"])

	// Zero outcomes: no fee, no division by zero.
	zero := cfg.Charge(0)
	assert.Zero(t, zero[0].Amount)
	assert.Zero(t, zero[0].UnitPrice)
}

func TestComputePreviewAgent(t *testing.T) {
	cfg := &AgentConfig{
		BaseAgentFee:             400,
		SetupFee:                 150,
		VolumeDiscountEnabled:    true,
		VolumeDiscountThreshold:  1000,
		VolumeDiscountPercentage: 25,
	}

	below := ComputePreview(cfg, 100)
	assert.Equal(t, 400.0, below.BaseFee)
	assert.Equal(t, 150.0, below.SetupFee)
	assert.Equal(t, 25.0, below.DiscountPercentage)
	assert.Equal(t, 550.0, below.EstimatedMonthly)

	above := ComputePreview(cfg, 1000)
	assert.Equal(t, 450.0, above.EstimatedMonthly) // 400*0.75 + 150

	// Discount shown only when enabled AND a threshold is set.
	cfg.VolumeDiscountThreshold = 0
	assert.Zero(t, ComputePreview(cfg, 1000).DiscountPercentage)

	// Preview never mutates the config.
	assert.Equal(t, 400.0, cfg.BaseAgentFee)
}

func TestComputePreviewOtherVariants(t *testing.T) {
	activity := &ActivityConfig{PricePerUnit: 0.5, UnitType: "action"}
	assert.Equal(t, 50.0, ComputePreview(activity, 100).EstimatedMonthly)

	hybrid := &HybridConfig{}
	assert.Zero(t, ComputePreview(hybrid, 100).EstimatedMonthly)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	orig := &WorkflowConfig{
		BasePlatformFee:      250,
		PlatformFeeFrequency: "monthly",
		WorkflowTypes:        []WorkflowTypeRate{{TypeName: "etl", PricePerWorkflow: 1.25, EstimatedVolume: 40}},
	}
	raw, err := Encode(orig)
	require.NoError(t, err)

	decoded, err := Decode("workflow", raw)
	require.NoError(t, err)
	assert.Equal(t, orig, decoded)

	var decodeErr *json.SyntaxError
	_, err = Decode("workflow", []byte(`{broken`))
	require.Error(t, err)
	assert.True(t, errors.As(err, &decodeErr))
}
