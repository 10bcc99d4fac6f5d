package pricing

// Preview is the read-only price illustration shown while a model is being
// configured. It never feeds back into the config or the submitted payload.
type Preview struct {
	BaseFee            float64 `json:"base_fee"`
	SetupFee           float64 `json:"setup_fee,omitempty"`
	DiscountPercentage float64 `json:"discount_percentage,omitempty"`
	EstimatedMonthly   float64 `json:"estimated_monthly"`
}

// ComputePreview derives the illustrative monthly price for a config at the
// given expected unit volume. Pure: recomputed on every field change, no state.
func ComputePreview(cfg Config, units int) Preview {
	switch c := cfg.(type) {
	case *AgentConfig:
		p := Preview{BaseFee: c.BaseAgentFee, SetupFee: c.SetupFee}
		monthly := c.BaseAgentFee
		if c.VolumeDiscountEnabled && c.VolumeDiscountThreshold > 0 {
			p.DiscountPercentage = c.VolumeDiscountPercentage
			if units >= c.VolumeDiscountThreshold {
				monthly = monthly * (1 - c.VolumeDiscountPercentage/100)
			}
		}
		p.EstimatedMonthly = monthly + c.SetupFee
		return p
	case *HybridConfig:
		return Preview{}
	default:
		var total float64
		for _, line := range cfg.Charge(units) {
			total += line.Amount
		}
		return Preview{EstimatedMonthly: total}
	}
}
