package stats

import (
	"fmt"
	"sync"
	"time"
)

// AlertLevel is an alert's severity, grounded on pkg/monitor's AlertLevel.
type AlertLevel int

const (
	AlertInfo AlertLevel = iota
	AlertWarning
	AlertError
	AlertCritical
)

func (a AlertLevel) String() string {
	switch a {
	case AlertInfo:
		return "INFO"
	case AlertWarning:
		return "WARNING"
	case AlertError:
		return "ERROR"
	case AlertCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Alert is one triggered condition.
type Alert struct {
	Level     AlertLevel
	Type      string
	Message   string
	Record    StatementRecord
	Timestamp time.Time
}

// AlertRule inspects a statement record and optionally fires an Alert.
type AlertRule interface {
	Check(rec StatementRecord) *Alert
	Name() string
}

// AlertHandler receives every fired Alert.
type AlertHandler func(*Alert)

// AlertManager owns the rule set and handler list (pkg/monitor.AlertManager).
type AlertManager struct {
	mu       sync.RWMutex
	rules    []AlertRule
	handlers []AlertHandler

	statsMu sync.RWMutex
	counts  map[AlertLevel]int64
}

// NewAlertManager returns an empty alert manager.
func NewAlertManager() *AlertManager {
	return &AlertManager{counts: make(map[AlertLevel]int64)}
}

// AddRule registers a rule to be checked on every record.
func (am *AlertManager) AddRule(rule AlertRule) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.rules = append(am.rules, rule)
}

// AddHandler registers a handler invoked for every fired alert.
func (am *AlertManager) AddHandler(h AlertHandler) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.handlers = append(am.handlers, h)
}

// Check runs every rule against rec and dispatches any alerts fired.
func (am *AlertManager) Check(rec StatementRecord) {
	am.mu.RLock()
	rules := am.rules
	handlers := am.handlers
	am.mu.RUnlock()

	for _, rule := range rules {
		alert := rule.Check(rec)
		if alert == nil {
			continue
		}
		am.statsMu.Lock()
		am.counts[alert.Level]++
		am.statsMu.Unlock()

		for _, h := range handlers {
			h(alert)
		}
	}
}

// Counts returns the number of alerts fired at each level.
func (am *AlertManager) Counts() map[AlertLevel]int64 {
	am.statsMu.RLock()
	defer am.statsMu.RUnlock()
	out := make(map[AlertLevel]int64, len(am.counts))
	for k, v := range am.counts {
		out[k] = v
	}
	return out
}

// SlowStatementRule fires when a statement's duration crosses Threshold,
// escalating severity at 2x and 5x (pkg/monitor.SlowQueryRule).
type SlowStatementRule struct {
	Threshold time.Duration
}

func (r *SlowStatementRule) Name() string { return "SlowStatementRule" }

func (r *SlowStatementRule) Check(rec StatementRecord) *Alert {
	if rec.Duration < r.Threshold {
		return nil
	}
	level := AlertWarning
	if rec.Duration >= r.Threshold*2 {
		level = AlertError
	}
	if rec.Duration >= r.Threshold*5 {
		level = AlertCritical
	}
	return &Alert{
		Level:     level,
		Type:      "SLOW_STATEMENT",
		Message:   fmt.Sprintf("statement took %s (threshold %s)", rec.Duration, r.Threshold),
		Record:    rec,
		Timestamp: rec.Timestamp,
	}
}

// ExecutionErrorRule fires whenever a statement fails.
type ExecutionErrorRule struct{}

func (r *ExecutionErrorRule) Name() string { return "ExecutionErrorRule" }

func (r *ExecutionErrorRule) Check(rec StatementRecord) *Alert {
	if rec.Err == nil {
		return nil
	}
	return &Alert{
		Level:     AlertWarning,
		Type:      "EXECUTION_ERROR",
		Message:   rec.Err.Error(),
		Record:    rec,
		Timestamp: rec.Timestamp,
	}
}
