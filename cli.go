package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shazow/wifibridge/bridge"
	"github.com/shazow/wifibridge/internal/config"
	"github.com/shazow/wifibridge/internal/log"
	"github.com/shazow/wifibridge/internal/render"
	"github.com/shazow/wifibridge/internal/server"
	"github.com/shazow/wifibridge/wifi"
)

func runScan(ctx context.Context, w io.Writer, d *bridge.Dispatcher, table *render.Table, asJSON, sorted bool) error {
	records, err := d.Scan(ctx)
	if err != nil {
		return err
	}
	if sorted {
		wifi.SortScanRecords(records)
	}

	if asJSON {
		if records == nil {
			records = []wifi.ScanRecord{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	return table.Render(w, records)
}

func runConnect(ctx context.Context, w io.Writer, d *bridge.Dispatcher, req wifi.ConnectionRequest) error {
	msg, err := d.Connect(ctx, req)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, msg)
	return err
}

func runQR(w io.Writer, ssid, auth, secret string, hidden bool) error {
	a := wifi.ParseAuthType(auth)
	if auth == "" {
		a = wifi.AuthOpen
		if secret != "" {
			a = wifi.AuthWPA
		}
	} else if a == wifi.AuthUnknown {
		return fmt.Errorf("invalid auth type: %s", auth)
	}

	qr, err := render.WifiQRCode(ssid, secret, a, hidden)
	if err != nil {
		return fmt.Errorf("failed to generate qr code: %w", err)
	}
	_, err = fmt.Fprint(w, qr)
	return err
}

func runServe(ctx context.Context, cfg *config.Config, d *bridge.Dispatcher, reg *prometheus.Registry) error {
	s := server.New(server.Config{
		Addr:     cfg.Listen,
		Handler:  d,
		Gatherer: reg,
		Logs:     log.Entries,
		Trace:    cfg.Trace,
	})
	return s.Run(ctx)
}
