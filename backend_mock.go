//go:build mock

package main

import (
	"log/slog"

	"github.com/shazow/wifibridge/internal/config"
	"github.com/shazow/wifibridge/wifi"
	"github.com/shazow/wifibridge/wifi/mock"
)

func GetManager(cfg *config.Config, logger *slog.Logger) (wifi.Manager, error) {
	return mock.New()
}
