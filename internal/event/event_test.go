package event

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCodeBanding(t *testing.T) {
	tests := []struct {
		code Code
		band string
	}{
		{SysBootStart, "system"},
		{SysShutdown, "system"},
		{ActMotorsReady, "info"},
		{ActLogReady, "info"},
		{SafeFailsafeTrigger, "warning"},
		{SafeFailsafeClear, "warning"},
		{ErrStorageInitFail, "critical"},
		{ErrWatchdogReset, "critical"},
		{Code(0), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.code.Band(); got != tt.band {
			t.Errorf("Band(%d) = %q, want %q", tt.code, got, tt.band)
		}
	}
}

// TestCodeValues pins the code values external log consumers depend on.
// A value change here is a breaking protocol change, not a refactor.
func TestCodeValues(t *testing.T) {
	want := map[Code]uint16{
		SysBootStart:        1000,
		SysBootComplete:     1001,
		SysShutdown:         1004,
		ActInitStart:        2000,
		ActMotorsReady:      2001,
		ActServosReady:      2002,
		SafeFailsafeTrigger: 4005,
		SafeFailsafeClear:   4006,
		ErrStorageInitFail:  5001,
		ErrStorageWriteFail: 5002,
		ErrWatchdogReset:    5007,
	}
	for code, value := range want {
		if uint16(code) != value {
			t.Errorf("code value drifted: got %d, want %d", uint16(code), value)
		}
	}
}

func TestFormatPayload(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	payload, err := FormatPayload(Event{
		Timestamp: ts,
		Code:      SafeFailsafeTrigger,
		Detail:    "silence 612ms",
	})
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Event.Code != 4005 {
		t.Errorf("code = %d, want 4005", parsed.Event.Code)
	}
	if parsed.Event.Band != "warning" {
		t.Errorf("band = %q, want warning", parsed.Event.Band)
	}
	if parsed.Event.Timestamp != "2026-03-01T09:30:00Z" {
		t.Errorf("timestamp = %q", parsed.Event.Timestamp)
	}
	if parsed.Event.Detail != "silence 612ms" {
		t.Errorf("detail = %q", parsed.Event.Detail)
	}
}

func TestFormatPayloadOmitsEmptyDetail(t *testing.T) {
	payload, err := FormatPayload(Event{Timestamp: time.Now(), Code: SysBootStart})
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	var raw map[string]map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := raw["event"]["detail"]; ok {
		t.Error("empty detail should be omitted")
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(Event{Timestamp: time.Now(), Code: SysBootStart})
	f.Publish(Event{Timestamp: time.Now(), Code: SysBootComplete})

	codes := f.CodesPublished()
	if len(codes) != 2 || codes[0] != SysBootStart || codes[1] != SysBootComplete {
		t.Errorf("codes = %v", codes)
	}
	if len(f.Payloads) != 2 {
		t.Errorf("payloads = %d, want 2", len(f.Payloads))
	}
}

func TestFakePublisherInject(t *testing.T) {
	f := NewFakePublisher()
	var got []byte
	f.SubscribeCommands(func(payload []byte) { got = payload })
	f.Inject([]byte("M 10 -10 S NNNNNN"))
	if string(got) != "M 10 -10 S NNNNNN" {
		t.Errorf("handler got %q", got)
	}
}
