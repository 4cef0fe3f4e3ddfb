package audit

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scribeworks/compliance/pkg/common/logger"
)

// ErrUnsupportedFormat is returned by ExportReport for format names it does
// not know how to render.
var ErrUnsupportedFormat = errors.New("unsupported report format")

const (
	OutcomeGranted = "GRANTED"
	OutcomeDenied  = "DENIED"

	defaultMaxEntries  = 1000
	defaultKeepEntries = 100
)

// Entry is one access decision in the ledger. Entries are immutable once
// appended.
type Entry struct {
	Timestamp     time.Time `json:"timestamp"`
	EventID       string    `json:"event_id"`
	UserID        string    `json:"user_id"`
	Action        string    `json:"action"`
	Resource      string    `json:"resource"`
	Outcome       string    `json:"outcome"`
	IntegrityHash string    `json:"integrity_hash"`
}

// Trail is an append-only, in-memory ledger of access decisions. It bounds
// its own memory: once the ledger grows past maxEntries it is truncated to
// the most recent keepEntries. Discarded entries are gone unless an OnRotate
// hook captures them first.
//
// All ledger access is serialized by a mutex, so one Trail may be shared by
// concurrent callers.
type Trail struct {
	mu          sync.Mutex
	ledger      []Entry
	maxEntries  int
	keepEntries int
	onRotate    func([]Entry)
}

func NewTrail() *Trail {
	return NewTrailWithLimits(defaultMaxEntries, defaultKeepEntries)
}

func NewTrailWithLimits(maxEntries, keepEntries int) *Trail {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if keepEntries <= 0 || keepEntries > maxEntries {
		keepEntries = defaultKeepEntries
	}
	return &Trail{
		maxEntries:  maxEntries,
		keepEntries: keepEntries,
	}
}

// OnRotate installs a hook that receives the entries about to be discarded by
// rotation, in ledger order. The hook runs inside the append critical section
// and must not call back into the Trail.
func (t *Trail) OnRotate(hook func([]Entry)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRotate = hook
}

// LogAccess appends one access decision and rotates the ledger if it has
// outgrown its bound. It never fails.
func (t *Trail) LogAccess(userID, action, resource string, granted bool) {
	now := time.Now().UTC()
	entry := Entry{
		Timestamp:     now,
		EventID:       uuid.New().String(),
		UserID:        userID,
		Action:        action,
		Resource:      resource,
		Outcome:       OutcomeDenied,
		IntegrityHash: integrityHash(userID, action, now),
	}
	if granted {
		entry.Outcome = OutcomeGranted
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.ledger = append(t.ledger, entry)
	if len(t.ledger) > t.maxEntries {
		t.rotateLocked()
	}
}

// rotateLocked truncates the ledger to the newest keepEntries. Caller holds
// the lock.
func (t *Trail) rotateLocked() {
	cut := len(t.ledger) - t.keepEntries
	discarded := t.ledger[:cut]
	if t.onRotate != nil {
		t.onRotate(discarded)
	}

	kept := make([]Entry, t.keepEntries)
	copy(kept, t.ledger[cut:])
	t.ledger = kept

	if logger.Log != nil {
		logger.Log.WithFields(map[string]interface{}{
			"discarded": cut,
			"retained":  t.keepEntries,
		}).Info("Audit trail rotated")
	}
}

// Snapshot returns a copy of the current ledger in append order.
func (t *Trail) Snapshot() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.ledger))
	copy(out, t.ledger)
	return out
}

// Len reports the current ledger size.
func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ledger)
}

// ExportReport renders the ledger as "json" or "csv". The snapshot is taken
// atomically, so a concurrent rotation yields either the pre- or
// post-rotation ledger, never a partial one.
func (t *Trail) ExportReport(format string) (string, error) {
	entries := t.Snapshot()

	switch format {
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case "csv":
		var b strings.Builder
		b.WriteString("timestamp,user_id,action,outcome\n")
		for i, e := range entries {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(e.Timestamp.Format(time.RFC3339Nano))
			b.WriteString(",")
			b.WriteString(e.UserID)
			b.WriteString(",")
			b.WriteString(e.Action)
			b.WriteString(",")
			b.WriteString(e.Outcome)
		}
		return b.String(), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func integrityHash(userID, action string, ts time.Time) string {
	payload := fmt.Sprintf("%s:%s:%d", userID, action, ts.UnixNano())
	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}
