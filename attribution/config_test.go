package attribution

import (
	"testing"

	"github.com/kbukum/minutes/errors"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var c Config
	c.ApplyDefaults()

	if c.ActionThreshold != ActionItemThreshold {
		t.Errorf("ActionThreshold = %v, want %v", c.ActionThreshold, ActionItemThreshold)
	}
	if c.CommitmentThreshold != CommitmentThreshold {
		t.Errorf("CommitmentThreshold = %v, want %v", c.CommitmentThreshold, CommitmentThreshold)
	}
	if c.DueOffsets != DefaultDueOffsets() {
		t.Errorf("DueOffsets = %+v, want defaults", c.DueOffsets)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{ActionThreshold: 0.7, CommitmentThreshold: 0.8}, false},
		{"action above one", Config{ActionThreshold: 1.2}, true},
		{"negative commitment", Config{CommitmentThreshold: -0.1}, true},
		{"negative offset", Config{DueOffsets: DueOffsets{High: -1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.HasCode(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error code: got %v", err)
			}
		})
	}
}

func TestConfig_Options(t *testing.T) {
	c := Config{ActionThreshold: 0.5, CommitmentThreshold: 0.9, DueOffsets: DueOffsets{High: 1, Medium: 2, Low: 3}}
	p := NewPipeline(c.Options()...)
	if p.Threshold() != 0.5 {
		t.Errorf("Threshold() = %v, want 0.5", p.Threshold())
	}
}
