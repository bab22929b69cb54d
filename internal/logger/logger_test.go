package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		log       func(l *Logger)
		shouldLog bool
	}{
		{"debug logs at debug", LevelDebug, func(l *Logger) { l.Debug("m", nil) }, true},
		{"info logs at debug", LevelDebug, func(l *Logger) { l.Info("m", nil) }, true},
		{"debug doesn't log at info", LevelInfo, func(l *Logger) { l.Debug("m", nil) }, false},
		{"warn doesn't log at error", LevelError, func(l *Logger) { l.Warn("m", nil) }, false},
		{"error always logs", LevelDebug, func(l *Logger) { l.Error("m", nil, nil) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(New(tt.minLevel, &buf))

			if logged := buf.Len() > 0; logged != tt.shouldLog {
				t.Errorf("logged = %v, want %v", logged, tt.shouldLog)
			}
		})
	}
}

func TestLogger_JSONEntry(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo, &buf)

	l.Error("post fetch failed", Fields{"link": "https://example.com/p"}, errors.New("boom"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}

	want := map[string]string{
		"message": "post fetch failed",
		"level":   "error",
		"link":    "https://example.com/p",
		"error":   "boom",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("entry[%q] = %v, want %q", k, entry[k], v)
		}
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("entry has no timestamp")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMetrics_Counter(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("harvest.runs")
	m.IncrCounter("harvest.runs")
	m.AddCounter("harvest.runs", 3)

	if got := m.Snapshot().Counters["harvest.runs"]; got != 5 {
		t.Errorf("Counter = %v, want 5", got)
	}
}

func TestMetrics_Gauge(t *testing.T) {
	m := NewMetrics()

	m.SetGauge("harvest.last_count", 4)
	m.SetGauge("harvest.last_count", 2)

	if got := m.Snapshot().Gauges["harvest.last_count"]; got != 2 {
		t.Errorf("Gauge = %v, want 2", got)
	}
}

func TestMetrics_Timing(t *testing.T) {
	m := NewMetrics()

	m.RecordTiming("fetch", 100*time.Millisecond)
	m.RecordTiming("fetch", 200*time.Millisecond)
	m.RecordTiming("fetch", 150*time.Millisecond)

	stats := m.Snapshot().Timings["fetch"]
	if stats.Count != 3 {
		t.Errorf("Timing count = %v, want 3", stats.Count)
	}
	if stats.Min != "100ms" {
		t.Errorf("Min timing = %v, want 100ms", stats.Min)
	}
	if stats.Max != "200ms" {
		t.Errorf("Max timing = %v, want 200ms", stats.Max)
	}
	if stats.Average != "150ms" {
		t.Errorf("Average timing = %v, want 150ms", stats.Average)
	}
}

func TestMetrics_SnapshotIsCopy(t *testing.T) {
	m := NewMetrics()
	m.IncrCounter("a")

	snap := m.Snapshot()
	snap.Counters["a"] = 99

	if got := m.Snapshot().Counters["a"]; got != 1 {
		t.Errorf("Counter after mutating snapshot = %v, want 1", got)
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	SetDefault(New(LevelDebug, &buf))
	defer SetDefault(prev)

	Debug("test debug", nil)
	Info("test info", Fields{"key": "value"})
	Warn("test warning", nil)
	Error("test error", Fields{"component": "test"}, errors.New("test"))

	if lines := strings.Count(buf.String(), "\n"); lines != 4 {
		t.Errorf("logged %d lines, want 4", lines)
	}

	IncrCounter("test")
	SetGauge("test", 42.0)
	RecordTiming("test", time.Second)

	if snap := GetMetricsSnapshot(); snap.Counters["test"] < 1 {
		t.Error("GetMetricsSnapshot() missing test counter")
	}
}
