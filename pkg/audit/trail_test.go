package audit

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestLogAccessAppendsEntry(t *testing.T) {
	trail := NewTrail()
	trail.LogAccess("user_10293", "READ", "profile_data", true)

	entries := trail.Snapshot()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.UserID != "user_10293" || e.Action != "READ" || e.Resource != "profile_data" {
		t.Errorf("unexpected entry fields: %+v", e)
	}
	if e.Outcome != OutcomeGranted {
		t.Errorf("outcome = %q, want GRANTED", e.Outcome)
	}
	if e.EventID == "" || e.IntegrityHash == "" || e.Timestamp.IsZero() {
		t.Errorf("entry missing generated fields: %+v", e)
	}
	if len(e.IntegrityHash) != 40 {
		t.Errorf("integrity hash should be sha1 hex, got %q", e.IntegrityHash)
	}
}

func TestDeniedOutcome(t *testing.T) {
	trail := NewTrail()
	trail.LogAccess("intruder", "DELETE", "ledger", false)
	if got := trail.Snapshot()[0].Outcome; got != OutcomeDenied {
		t.Errorf("outcome = %q, want DENIED", got)
	}
}

func TestRotationKeepsMostRecentEntries(t *testing.T) {
	trail := NewTrail()
	for i := 0; i < 1001; i++ {
		trail.LogAccess("user", "READ", "resource", true)
	}

	entries := trail.Snapshot()
	if len(entries) != 100 {
		t.Fatalf("expected 100 entries after rotation, got %d", len(entries))
	}

	// Surviving entries must be the most recent ones, still in append order.
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.Before(entries[i-1].Timestamp) {
			t.Fatal("entries out of append order after rotation")
		}
	}
}

func TestOnRotateReceivesDiscardedEntries(t *testing.T) {
	trail := NewTrailWithLimits(10, 3)

	var discarded []Entry
	trail.OnRotate(func(entries []Entry) {
		discarded = append(discarded, entries...)
	})

	seen := make(map[string]struct{})
	for i := 0; i < 11; i++ {
		trail.LogAccess("user", "READ", "resource", true)
	}
	for _, e := range trail.Snapshot() {
		seen[e.EventID] = struct{}{}
	}

	if len(discarded) != 8 {
		t.Fatalf("expected 8 discarded entries, got %d", len(discarded))
	}
	for _, e := range discarded {
		if _, stillThere := seen[e.EventID]; stillThere {
			t.Errorf("discarded entry %s still present in ledger", e.EventID)
		}
	}
}

func TestExportReportJSON(t *testing.T) {
	trail := NewTrail()
	trail.LogAccess("alice", "READ", "records", true)
	trail.LogAccess("bob", "WRITE", "records", false)

	out, err := trail.ExportReport("json")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(entries) != 2 || entries[0].UserID != "alice" || entries[1].Outcome != OutcomeDenied {
		t.Errorf("unexpected export content: %+v", entries)
	}
}

func TestExportReportCSV(t *testing.T) {
	trail := NewTrail()
	trail.LogAccess("alice", "READ", "records", true)

	out, err := trail.ExportReport("csv")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(out, "\n")
	if lines[0] != "timestamp,user_id,action,outcome" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if len(lines) != 2 || !strings.Contains(lines[1], "alice,READ,GRANTED") {
		t.Errorf("unexpected rows: %q", lines[1:])
	}
}

func TestExportReportUnsupportedFormat(t *testing.T) {
	trail := NewTrail()
	_, err := trail.ExportReport("xml")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestConcurrentLogAccess(t *testing.T) {
	trail := NewTrailWithLimits(10000, 100)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				trail.LogAccess("user", "READ", "resource", true)
			}
		}()
	}
	wg.Wait()

	if got := trail.Len(); got != 800 {
		t.Fatalf("expected 800 entries, got %d", got)
	}
}
