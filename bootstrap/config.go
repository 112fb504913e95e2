package bootstrap

import "github.com/kbukum/minutes/config"

// Config is the constraint for application configs. A struct embedding
// config.ServiceConfig satisfies it through promoted methods as long as it
// also defines ApplyDefaults and Validate for its own sections.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
