package wifi

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ScanMode selects how the Scanner learns that results are ready.
type ScanMode int

const (
	// ScanNotify waits for the manager's scan-complete notification.
	ScanNotify ScanMode = iota
	// ScanSnapshot reads results right after triggering the scan.
	ScanSnapshot
)

func (m ScanMode) String() string {
	if m == ScanSnapshot {
		return "snapshot"
	}
	return "notify"
}

// ParseScanMode parses "notify" or "snapshot".
func ParseScanMode(s string) (ScanMode, error) {
	switch s {
	case "", "notify":
		return ScanNotify, nil
	case "snapshot":
		return ScanSnapshot, nil
	}
	return ScanNotify, NewRequestError(ErrInvalidParams, nil, "invalid scan mode: %s", s)
}

// ScanState is the state of a Scanner.
type ScanState int

const (
	ScanIdle ScanState = iota
	ScanScanning
	ScanResultsReady
)

func (s ScanState) String() string {
	switch s {
	case ScanScanning:
		return "scanning"
	case ScanResultsReady:
		return "results-ready"
	}
	return "idle"
}

// ScannerOptions configures a Scanner.
type ScannerOptions struct {
	Mode ScanMode
	// Timeout bounds the wait for a scan-complete notification. Zero waits
	// until the context is done.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Scanner runs one scan at a time against a Manager.
type Scanner struct {
	m       Manager
	mode    ScanMode
	timeout time.Duration
	logger  *slog.Logger

	mu    sync.Mutex
	state ScanState
}

// NewScanner creates a Scanner. Notify mode on a manager that cannot notify
// falls back to snapshot mode.
func NewScanner(m Manager, opts ScannerOptions) *Scanner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mode := opts.Mode
	if mode == ScanNotify {
		if _, ok := m.(ScanNotifier); !ok {
			logger.Warn("manager does not support scan notifications, using snapshot mode")
			mode = ScanSnapshot
		}
	}
	return &Scanner{
		m:       m,
		mode:    mode,
		timeout: opts.Timeout,
		logger:  logger,
	}
}

// Mode returns the effective scan mode.
func (s *Scanner) Mode() ScanMode {
	return s.mode
}

// State returns the current state.
func (s *Scanner) State() ScanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scanner) setState(state ScanState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Scan triggers a scan and returns the resulting snapshot in OS order.
func (s *Scanner) Scan(ctx context.Context) ([]ScanRecord, error) {
	s.mu.Lock()
	if s.state != ScanIdle {
		s.mu.Unlock()
		return nil, NewRequestError(ErrScanInProgress, nil, "Scan already in progress")
	}
	s.state = ScanScanning
	s.mu.Unlock()
	defer s.setState(ScanIdle)

	if s.mode == ScanSnapshot {
		if err := s.m.StartScan(); err != nil {
			return nil, NewRequestError(ErrScanRequestFailed, err, "Scan failed")
		}
		return s.deliver()
	}

	w := newScanWait()
	defer w.release()

	unsubscribe, err := s.m.(ScanNotifier).SubscribeScanResults(w.fire)
	if err != nil {
		return nil, NewRequestError(ErrScanRequestFailed, err, "Scan failed")
	}
	w.setCancel(unsubscribe)

	if err := s.m.StartScan(); err != nil {
		return nil, NewRequestError(ErrScanRequestFailed, err, "Scan failed")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	select {
	case <-w.done:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRequestError(ErrTimedOut, ctx.Err(), "Scan timed out")
		}
		return nil, ctx.Err()
	}
	return s.deliver()
}

func (s *Scanner) deliver() ([]ScanRecord, error) {
	s.setState(ScanResultsReady)
	records, err := s.m.ScanResults()
	if err != nil {
		return nil, NewRequestError(ErrScanRequestFailed, err, "Scan failed")
	}
	s.logger.Debug("scan complete", "networks", len(records), "mode", s.mode)
	return records, nil
}

// scanWait is a deliver-once completion signal. The subscription is released
// as soon as the first notification fires.
type scanWait struct {
	once sync.Once
	done chan struct{}

	mu       sync.Mutex
	cancel   func()
	released bool
}

func newScanWait() *scanWait {
	return &scanWait{done: make(chan struct{})}
}

func (w *scanWait) fire() {
	w.once.Do(func() {
		close(w.done)
		w.release()
	})
}

func (w *scanWait) setCancel(cancel func()) {
	w.mu.Lock()
	if w.released {
		w.mu.Unlock()
		cancel()
		return
	}
	w.cancel = cancel
	w.mu.Unlock()
}

func (w *scanWait) release() {
	w.mu.Lock()
	w.released = true
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
