// Package logger provides structured logging for minutes using zerolog.
//
// Every core package logs through a component-scoped logger so that
// repairs, fallbacks and dropped items can be traced per stage.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("attribution")
//	log.Info("items attributed", logger.Fields("kept", 3, "dropped", 1))
package logger
