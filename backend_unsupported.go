//go:build !linux && !mock

package main

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/shazow/wifibridge/internal/config"
	"github.com/shazow/wifibridge/wifi"
)

// GetManager returns an error for unsupported operating systems.
func GetManager(cfg *config.Config, logger *slog.Logger) (wifi.Manager, error) {
	return nil, fmt.Errorf("%s: %w", runtime.GOOS, wifi.ErrNotSupported)
}
