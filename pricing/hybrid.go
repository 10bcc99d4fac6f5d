package pricing

// HybridConfig is a placeholder for mixed billing models. Stored rows decode
// so reads keep working, but it never validates: create and update reject it.
type HybridConfig struct{}

func (c *HybridConfig) Type() ModelType { return ModelHybrid }

func (c *HybridConfig) sentinelKey() string { return "hybrid_components" }

func (c *HybridConfig) applyDefaults() {}

func (c *HybridConfig) Validate() error { return ErrHybridNotSupported }

func (c *HybridConfig) Charge(units int) []ChargeLine { return nil }
