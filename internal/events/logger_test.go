package events

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readRecords(t *testing.T, path string) []logRecord {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening log: %v", err)
	}
	defer f.Close()

	var recs []logRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec logRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("bad log line %q: %v", scanner.Text(), err)
		}
		recs = append(recs, rec)
	}
	return recs
}

func TestLoggerWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	l, err := NewLogger(LoggerOptions{Path: path, Enabled: true})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()

	if err := l.Log(NewCommandSubmitted(7, "make test", "task-42")); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := l.Log(NewCommandCompleted(7, 1, true)); err != nil {
		t.Fatalf("Log: %v", err)
	}

	recs := readRecords(t, path)
	if len(recs) != 2 {
		t.Fatalf("log has %d records, want 2", len(recs))
	}
	if recs[0].Kind != KindCommandSubmitted || recs[0].Session != 7 {
		t.Errorf("record 0 = %+v", recs[0])
	}
	if recs[0].Data["command"] != "make test" {
		t.Errorf("record 0 data = %v, want command field", recs[0].Data)
	}
	if recs[1].Kind != KindCommandCompleted {
		t.Errorf("record 1 kind = %s", recs[1].Kind)
	}
	if queued, ok := recs[1].Data["queued"].(bool); !ok || !queued {
		t.Errorf("record 1 queued = %v, want true", recs[1].Data["queued"])
	}
}

func TestLoggerDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	l, err := NewLogger(LoggerOptions{Path: path, Enabled: false})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if err := l.Log(NewStreamOpened(1)); err != nil {
		t.Fatalf("Log on disabled logger: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("disabled logger should not create the log file")
	}
}

func TestLoggerAttachToBus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	l, err := NewLogger(LoggerOptions{Path: path, Enabled: true})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()

	bus := NewBus(10)
	unsub := l.Attach(bus)

	bus.Publish(NewSessionCreated(3, ""))
	unsub()
	bus.Publish(NewSessionRemoved(3))

	recs := readRecords(t, path)
	if len(recs) != 1 {
		t.Fatalf("log has %d records, want 1 (after unsubscribe)", len(recs))
	}
	if recs[0].Kind != KindSessionCreated {
		t.Errorf("record kind = %s, want %s", recs[0].Kind, KindSessionCreated)
	}
}
