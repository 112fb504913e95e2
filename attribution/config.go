package attribution

import "github.com/kbukum/minutes/validation"

// Config holds the tunables of an attribution Pipeline.
type Config struct {
	// ActionThreshold drops action items below this confidence. Zero means
	// ActionItemThreshold.
	ActionThreshold float64 `yaml:"action_threshold" mapstructure:"action_threshold" validate:"gte=0,lte=1"`

	// CommitmentThreshold drops implicit commitments below this confidence.
	CommitmentThreshold float64 `yaml:"commitment_threshold" mapstructure:"commitment_threshold" validate:"gte=0,lte=1"`

	DueOffsets DueOffsets `yaml:"due_offsets" mapstructure:"due_offsets"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.ActionThreshold == 0 {
		c.ActionThreshold = ActionItemThreshold
	}
	if c.CommitmentThreshold == 0 {
		c.CommitmentThreshold = CommitmentThreshold
	}
	if c.DueOffsets == (DueOffsets{}) {
		c.DueOffsets = DefaultDueOffsets()
	}
}

// Validate checks threshold ranges and offsets.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Options converts the config into Pipeline options.
func (c Config) Options() []Option {
	return []Option{
		WithThreshold(c.ActionThreshold),
		WithCommitmentThreshold(c.CommitmentThreshold),
		WithDueOffsets(c.DueOffsets),
	}
}
