package config

import (
	"github.com/MonkyMars/gecho"
)

var logger gecho.Logger

// InitializeLogger sets up the catalog server's process-wide logger, called
// once at startup before any service is constructed.
func InitializeLogger() *gecho.Logger {
	logger = *gecho.NewDefaultLogger()
	return &logger
}

func GetLogger() *gecho.Logger {
	return &logger
}
