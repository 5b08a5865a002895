package ledger

import (
	"log"
	"sort"
	"sync"
	"time"

	"MetricRecipes/internal/model"
)

// Manager keeps the latest result of every recipe, persisted to a JSON file.
type Manager struct {
	mu       sync.Mutex
	state    *model.LedgerState
	filePath string
	layout   string
}

// NewManager creates a Manager, loading or initializing state from disk.
// dateLayout is the time layout of result date keys.
func NewManager(filePath, dateLayout string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	m := &Manager{state: state, filePath: filePath, layout: dateLayout}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Apply stores the results of a finished run. A result for a date older than
// the one already held for that recipe does not replace it.
func (m *Manager) Apply(runID string, runAt time.Time, results []model.RecipeResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, res := range results {
		if cur, ok := m.state.Latest[res.Recipe]; ok && m.before(res.DateKey, cur.DateKey) {
			continue
		}
		m.state.Latest[res.Recipe] = res
	}
	m.state.LastRunID = runID
	m.state.LastRunAt = runAt

	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save ledger state: %v", err)
	}
}

// before reports whether date key a is earlier than b. Keys that do not parse
// with the layout fall back to string order.
func (m *Manager) before(a, b string) bool {
	ta, errA := time.Parse(m.layout, a)
	tb, errB := time.Parse(m.layout, b)
	if m.layout == "" || errA != nil || errB != nil {
		return a < b
	}
	return ta.Before(tb)
}

// Latest returns the latest result for a recipe.
func (m *Manager) Latest(recipe string) (model.RecipeResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.state.Latest[recipe]
	return res, ok
}

// Snapshot returns the latest results ordered by recipe name.
func (m *Manager) Snapshot() []model.RecipeResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.RecipeResult, 0, len(m.state.Latest))
	for _, res := range m.state.Latest {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Recipe < out[j].Recipe })
	return out
}

// GetState returns a copy of the current ledger state.
func (m *Manager) GetState() model.LedgerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.state
	cp.Latest = make(map[string]model.RecipeResult, len(m.state.Latest))
	for k, v := range m.state.Latest {
		cp.Latest[k] = v
	}
	return cp
}

// Forget drops recipes that are no longer configured.
func (m *Manager) Forget(keep []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	configured := make(map[string]bool, len(keep))
	for _, name := range keep {
		configured[name] = true
	}
	for name := range m.state.Latest {
		if !configured[name] {
			delete(m.state.Latest, name)
		}
	}
	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save ledger state after cleanup: %v", err)
	}
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}
