package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/shazow/wifibridge/bridge"
	"github.com/shazow/wifibridge/internal/config"
	"github.com/shazow/wifibridge/internal/log"
	"github.com/shazow/wifibridge/internal/metrics"
	"github.com/shazow/wifibridge/internal/render"
	"github.com/shazow/wifibridge/internal/telemetry"
	"github.com/shazow/wifibridge/wifi"
)

var (
	// Version is the version of the application. It is set at build time.
	Version string = "dev"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %s\n", wifi.Message(err))
		os.Exit(1)
	}
}

func run(args []string) error {
	var cfg config.Config
	rootFlagSet := flag.NewFlagSet("wifibridge", flag.ContinueOnError)
	cfg.RegisterFlags(rootFlagSet)

	// Set once flags are parsed, before any subcommand runs. The manager is
	// only resolved by subcommands that talk to the radio.
	var (
		dispatcher func() (*bridge.Dispatcher, error)
		reg        *prometheus.Registry
		theme      render.Theme
	)

	scanFlagSet := flag.NewFlagSet("scan", flag.ContinueOnError)
	scanJSON := scanFlagSet.Bool("json", false, "output in JSON format")
	scanSort := scanFlagSet.Bool("sort", false, "sort by signal level")
	scanCmd := &ffcli.Command{
		Name:       "scan",
		ShortUsage: "wifibridge scan [-json] [-sort]",
		ShortHelp:  "Scan for wifi networks",
		FlagSet:    scanFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			d, err := dispatcher()
			if err != nil {
				return err
			}
			return runScan(ctx, os.Stdout, d, render.NewTable(theme), *scanJSON, *scanSort)
		},
	}

	connectFlagSet := flag.NewFlagSet("connect", flag.ContinueOnError)
	connectAuth := connectFlagSet.String("auth", "", "auth type for a new network (WPA)")
	connectSecret := connectFlagSet.String("secret", "", "passphrase for a new network")
	connectCmd := &ffcli.Command{
		Name:       "connect",
		ShortUsage: "wifibridge connect [-auth WPA -secret <passphrase>] <ssid>",
		ShortHelp:  "Connect to a wifi network, registering it if needed",
		FlagSet:    connectFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("connect requires an ssid")
			}
			if *connectAuth != "" && *connectSecret == "" {
				return fmt.Errorf("connect -auth requires -secret")
			}
			req := wifi.ConnectionRequest{SSID: args[0], AuthType: *connectAuth, Secret: *connectSecret}
			d, err := dispatcher()
			if err != nil {
				return err
			}
			return runConnect(ctx, os.Stdout, d, req)
		},
	}

	qrFlagSet := flag.NewFlagSet("qr", flag.ContinueOnError)
	qrAuth := qrFlagSet.String("auth", "", "auth type (OPEN, WEP, WPA); defaults to WPA with a secret")
	qrSecret := qrFlagSet.String("secret", "", "passphrase for the network")
	qrHidden := qrFlagSet.Bool("hidden", false, "network is hidden")
	qrCmd := &ffcli.Command{
		Name:       "qr",
		ShortUsage: "wifibridge qr [-auth <type>] [-secret <passphrase>] [-hidden] <ssid>",
		ShortHelp:  "Print a QR code to join a network",
		FlagSet:    qrFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("qr requires an ssid")
			}
			return runQR(os.Stdout, args[0], *qrAuth, *qrSecret, *qrHidden)
		},
	}

	serveCmd := &ffcli.Command{
		Name:       "serve",
		ShortUsage: "wifibridge serve",
		ShortHelp:  "Serve bridge requests over HTTP and WebSocket",
		Exec: func(ctx context.Context, args []string) error {
			d, err := dispatcher()
			if err != nil {
				return err
			}
			return runServe(ctx, &cfg, d, reg)
		},
	}

	root := &ffcli.Command{
		ShortUsage:  "wifibridge [flags] <subcommand> [args...]",
		FlagSet:     rootFlagSet,
		Options:     config.Options(),
		Subcommands: []*ffcli.Command{scanCmd, connectCmd, qrCmd, serveCmd},
		Exec: func(ctx context.Context, args []string) error {
			rootFlagSet.Usage()
			return flag.ErrHelp
		},
	}

	if err := root.Parse(args); err != nil {
		return err
	}

	if cfg.Version {
		fmt.Println(Version)
		return nil
	}

	log.Init(os.Stderr, log.ParseLevel(cfg.LogLevel))
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Trace {
		shutdown, err := telemetry.InitTracer(os.Stderr, Version)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("failed to flush traces", "error", err)
			}
		}()
	}

	var err error
	theme, err = loadTheme(cfg.Theme)
	if err != nil {
		return fmt.Errorf("error loading theme: %w", err)
	}

	opts, err := cfg.BridgeOptions()
	if err != nil {
		return err
	}

	reg = prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	opts.Logger = logger
	opts.Metrics = metrics.New(reg)
	dispatcher = func() (*bridge.Dispatcher, error) {
		m, err := GetManager(&cfg, logger)
		if err != nil {
			return nil, err
		}
		return bridge.New(m, opts), nil
	}

	return root.Run(ctx)
}

func loadTheme(path string) (render.Theme, error) {
	if path == "" {
		return render.NewDefaultTheme(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return render.Theme{}, err
	}
	defer f.Close()
	return render.LoadTheme(f)
}
