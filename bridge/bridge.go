// Package bridge maps action requests onto a wifi.Manager, the way a hybrid
// app plugin exposes a native service to a web view.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shazow/wifibridge/internal/metrics"
	"github.com/shazow/wifibridge/wifi"
)

const (
	ActionScan    = "scan"
	ActionConnect = "connect"
)

const defaultRadioPoll = 250 * time.Millisecond

// Options configures a Dispatcher.
type Options struct {
	ScanMode    wifi.ScanMode
	ScanTimeout time.Duration
	// RadioTimeout bounds the wait for the radio to come up. Zero enables the
	// radio without waiting for it.
	RadioTimeout      time.Duration
	RadioPollInterval time.Duration
	// Exclusive disables all other networks when one is enabled.
	Exclusive bool
	// DisablePrevious disables the last network this dispatcher enabled
	// before enabling a different one.
	DisablePrevious bool

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Result is the successful outcome of a request.
type Result struct {
	Action   string
	Message  string
	Networks []wifi.ScanRecord
}

// Payload returns the value reported to the caller: the scan records for a
// scan, the confirmation message otherwise.
func (r Result) Payload() any {
	if r.Action == ActionScan {
		if r.Networks == nil {
			return []wifi.ScanRecord{}
		}
		return r.Networks
	}
	return r.Message
}

// Dispatcher routes actions to the matcher, registrar and scanner.
type Dispatcher struct {
	m       wifi.Manager
	scanner *wifi.Scanner
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	mu       sync.Mutex
	previous int
}

// New creates a Dispatcher for m.
func New(m wifi.Manager, opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RadioPollInterval <= 0 {
		opts.RadioPollInterval = defaultRadioPoll
	}
	met := opts.Metrics
	if met == nil {
		met = metrics.New(nil)
	}
	return &Dispatcher{
		m: m,
		scanner: wifi.NewScanner(m, wifi.ScannerOptions{
			Mode:    opts.ScanMode,
			Timeout: opts.ScanTimeout,
			Logger:  logger,
		}),
		opts:     opts,
		logger:   logger,
		metrics:  met,
		tracer:   otel.Tracer("github.com/shazow/wifibridge/bridge"),
		previous: wifi.InvalidNetworkID,
	}
}

// Handle runs action with the JSON array params and returns its result.
func (d *Dispatcher) Handle(ctx context.Context, action string, params json.RawMessage) (Result, error) {
	ctx, span := d.tracer.Start(ctx, "bridge."+action)
	defer span.End()

	res, err := d.handle(ctx, action, params)

	code := "ok"
	if err != nil {
		code = ErrorCode(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, wifi.Message(err))
		d.logger.Warn("request failed", "action", action, "code", code, "error", err)
	}
	span.SetAttributes(attribute.String("wifibridge.result", code))
	d.metrics.Requests.WithLabelValues(metricAction(action), code).Inc()
	return res, err
}

func (d *Dispatcher) handle(ctx context.Context, action string, params json.RawMessage) (Result, error) {
	switch action {
	case ActionScan:
		records, err := d.Scan(ctx)
		if err != nil {
			return Result{}, err
		}
		return Result{Action: action, Networks: records}, nil
	case ActionConnect:
		req, err := ParseConnectParams(params)
		if err != nil {
			return Result{}, err
		}
		msg, err := d.Connect(ctx, req)
		if err != nil {
			return Result{}, err
		}
		return Result{Action: action, Message: msg}, nil
	}
	return Result{}, wifi.NewRequestError(wifi.ErrInvalidAction, nil, "Incorrect action parameter: %s", action)
}

// Scan ensures the radio is on, then scans.
func (d *Dispatcher) Scan(ctx context.Context) ([]wifi.ScanRecord, error) {
	if err := d.ensureRadio(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	records, err := d.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	d.metrics.ScanDuration.Observe(time.Since(start).Seconds())
	d.metrics.ScanNetworks.Set(float64(len(records)))
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("wifibridge.networks", len(records)))
	return records, nil
}

// Connect enables the configured network for req.SSID, registering it first
// when it is unknown and credentials are given.
func (d *Dispatcher) Connect(ctx context.Context, req wifi.ConnectionRequest) (string, error) {
	if err := d.ensureRadio(ctx); err != nil {
		return "", err
	}

	id, err := wifi.FindNetworkID(d.m, req.SSID)
	if err != nil {
		return "", wifi.NewRequestError(wifi.ErrOperationFailed, err, "Could not connect to network: %s", req.SSID)
	}
	if id > 0 {
		if err := d.enable(id, req.SSID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Network %s connected!", req.SSID), nil
	}

	if !req.HasCredentials() {
		return "", wifi.NewRequestError(wifi.ErrNetworkNotFound, nil, "Could not connect to network: %s", req.SSID)
	}

	id, err = wifi.RegisterRequest(d.m, req)
	if err != nil {
		return "", err
	}
	d.metrics.Registrations.Inc()
	if err := d.enable(id, req.SSID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Network %s registered and connected!", req.SSID), nil
}

func (d *Dispatcher) enable(id int, ssid string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.opts.DisablePrevious && d.previous > 0 && d.previous != id {
		if err := d.m.DisableNetwork(d.previous); err != nil {
			d.logger.Warn("failed to disable previous network", "id", d.previous, "error", err)
		}
	}
	if err := d.m.EnableNetwork(id, d.opts.Exclusive); err != nil {
		return wifi.NewRequestError(wifi.ErrEnableFailed, err, "Could not connect to network: %s", ssid)
	}
	d.previous = id
	d.logger.Info("enabled network", "ssid", ssid, "id", id, "exclusive", d.opts.Exclusive)
	return nil
}

// ensureRadio turns the radio on if needed and waits up to RadioTimeout for
// it to report as enabled.
func (d *Dispatcher) ensureRadio(ctx context.Context) error {
	enabled, err := d.m.IsWifiEnabled()
	if err != nil {
		return wifi.NewRequestError(wifi.ErrRadioUnavailable, err, "WiFi radio unavailable")
	}
	if enabled {
		return nil
	}

	d.logger.Info("enabling wifi radio")
	if err := d.m.SetWifiEnabled(true); err != nil {
		return wifi.NewRequestError(wifi.ErrRadioUnavailable, err, "WiFi radio unavailable")
	}
	if d.opts.RadioTimeout <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.opts.RadioTimeout)
	defer cancel()
	ticker := time.NewTicker(d.opts.RadioPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return wifi.NewRequestError(wifi.ErrRadioUnavailable, ctx.Err(), "WiFi radio unavailable")
		case <-ticker.C:
			enabled, err := d.m.IsWifiEnabled()
			if err != nil {
				return wifi.NewRequestError(wifi.ErrRadioUnavailable, err, "WiFi radio unavailable")
			}
			if enabled {
				return nil
			}
		}
	}
}

// ParseConnectParams reads [ssid] or [ssid, authType, secret].
func ParseConnectParams(params json.RawMessage) (wifi.ConnectionRequest, error) {
	var args []*string
	if len(params) > 0 {
		if err := json.Unmarshal(params, &args); err != nil {
			return wifi.ConnectionRequest{}, wifi.NewRequestError(wifi.ErrInvalidParams, err, "Invalid connect parameters")
		}
	}
	if len(args) == 0 || args[0] == nil || *args[0] == "" {
		return wifi.ConnectionRequest{}, wifi.NewRequestError(wifi.ErrInvalidParams, nil, "Missing SSID parameter")
	}

	req := wifi.ConnectionRequest{SSID: *args[0]}
	if len(args) > 1 && args[1] != nil {
		req.AuthType = *args[1]
		if len(args) < 3 || args[2] == nil {
			return wifi.ConnectionRequest{}, wifi.NewRequestError(wifi.ErrInvalidParams, nil, "Missing secret parameter")
		}
		req.Secret = *args[2]
	}
	return req, nil
}

var errorCodes = []struct {
	kind error
	code string
}{
	{wifi.ErrScanRequestFailed, "scan_request_failed"},
	{wifi.ErrNetworkNotFound, "network_not_found"},
	{wifi.ErrUnsupportedAuthType, "unsupported_auth_type"},
	{wifi.ErrRegistrationFailed, "registration_failed"},
	{wifi.ErrInvalidAction, "invalid_action"},
	{wifi.ErrInvalidParams, "invalid_params"},
	{wifi.ErrTimedOut, "timed_out"},
	{wifi.ErrRadioUnavailable, "radio_unavailable"},
	{wifi.ErrScanInProgress, "scan_in_progress"},
	{wifi.ErrEnableFailed, "enable_failed"},
	{wifi.ErrOperationFailed, "operation_failed"},
}

// ErrorCode returns a stable identifier for the kind of err.
func ErrorCode(err error) string {
	var re *wifi.RequestError
	if errors.As(err, &re) {
		for _, c := range errorCodes {
			if re.Kind == c.kind {
				return c.code
			}
		}
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "internal"
}

// metricAction keeps label cardinality bounded for unknown actions.
func metricAction(action string) string {
	switch action {
	case ActionScan, ActionConnect:
		return action
	}
	return "unknown"
}
