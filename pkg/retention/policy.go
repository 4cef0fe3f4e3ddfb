package retention

import "time"

// ScheduleItem is one row of the cleanup schedule: records in Category older
// than CleanBefore are eligible for deletion.
type ScheduleItem struct {
	Category        string        `json:"category"`
	RetentionPeriod time.Duration `json:"retention_period"`
	CleanBefore     time.Time     `json:"clean_records_before"`
}

// Manager answers retention-window queries from a static policy table. It is
// immutable after construction and needs no locking.
type Manager struct {
	categories []string
	policies   map[string]time.Duration
	now        func() time.Time
}

func NewManager() *Manager {
	// Declaration order is preserved in the cleanup schedule.
	categories := []string{"user_logs", "transaction_history", "temp_files", "chat_history"}
	return &Manager{
		categories: categories,
		policies: map[string]time.Duration{
			"user_logs":           90 * 24 * time.Hour,
			"transaction_history": 7 * 365 * 24 * time.Hour,
			"temp_files":          24 * time.Hour,
			"chat_history":        180 * 24 * time.Hour,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock returns a copy using the given time source. Intended for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	clone := *m
	clone.now = now
	return &clone
}

// CheckEligibility reports whether data of the given category created at
// createdAt should still be retained. Unknown categories are always retained:
// the manager fails open rather than green-lighting deletion of data it has
// no policy for.
func (m *Manager) CheckEligibility(category string, createdAt time.Time) bool {
	period, known := m.policies[category]
	if !known {
		return true
	}
	return m.now().Before(createdAt.Add(period))
}

// RetentionPeriod returns the configured window for a category, or false when
// no policy exists.
func (m *Manager) RetentionPeriod(category string) (time.Duration, bool) {
	period, ok := m.policies[category]
	return period, ok
}

// CleanupSchedule returns one row per configured category with the cutoff
// computed against the current time. It has no side effects.
func (m *Manager) CleanupSchedule() []ScheduleItem {
	now := m.now()
	schedule := make([]ScheduleItem, 0, len(m.categories))
	for _, category := range m.categories {
		period := m.policies[category]
		schedule = append(schedule, ScheduleItem{
			Category:        category,
			RetentionPeriod: period,
			CleanBefore:     now.Add(-period),
		})
	}
	return schedule
}
