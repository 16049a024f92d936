package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"nutriplan/pkg/domain"
)

// FoodLogStore is the per-date nutrition ledger. Every mutation restores the
// totals of the affected day before it returns and then hands a snapshot of
// the whole ledger to the background persister.
type FoodLogStore struct {
	mu      sync.RWMutex
	logs    map[string]*domain.DailyLog
	opts    serviceOptions
	persist *persister
}

type foodLogState struct {
	DailyLogs map[string]domain.DailyLog `json:"dailyLogs"`
}

// MealGroup holds the entries of one meal type, each tagged with its position
// in the day's meals.
type MealGroup struct {
	MealType domain.MealType
	Entries  []IndexedEntry
}

// IndexedEntry is a food entry with its index in DailyLog.Meals.
type IndexedEntry struct {
	Index int
	Entry domain.FoodEntry
}

// DatedLog pairs a daily log with its date.
type DatedLog struct {
	Date string          `json:"date"`
	Log  domain.DailyLog `json:"log"`
}

// NewFoodLogStore hydrates a store from the adapter. Legacy documents are
// migrated and rewritten; an empty adapter is optionally seeded with sample data.
func NewFoodLogStore(ctx context.Context, adapter domain.StateStore, opts ...Option) (*FoodLogStore, error) {
	s := &FoodLogStore{logs: make(map[string]*domain.DailyLog), opts: buildOptions(opts)}
	dirty, err := s.hydrate(ctx, adapter)
	if err != nil {
		return nil, err
	}
	s.persist = newPersister(FoodLogStorageKey, adapter, &s.opts)
	if dirty {
		s.mu.Lock()
		s.snapshotLocked()
		s.mu.Unlock()
	}
	return s, nil
}

func (s *FoodLogStore) hydrate(ctx context.Context, adapter domain.StateStore) (bool, error) {
	version, raw, ok, err := loadDocument(ctx, adapter, FoodLogStorageKey)
	if err != nil {
		return false, err
	}
	if !ok {
		if !s.opts.sampleData {
			return false, nil
		}
		for date, log := range sampleDailyLogs(s.opts.clock.Now(), s.opts.newID) {
			l := log
			s.logs[date] = &l
		}
		s.opts.logger.Info("food log seeded with sample data", "days", len(s.logs))
		return true, nil
	}
	var state foodLogState
	if err := json.Unmarshal(raw, &state); err != nil {
		return false, fmt.Errorf("decode %s state: %w", FoodLogStorageKey, err)
	}
	migrated := s.migrate(state)
	if version < SchemaVersion {
		s.opts.logger.Info("food log migrated", "from_version", version, "to_version", SchemaVersion)
		return true, nil
	}
	return migrated, nil
}

// migrate installs state, assigning missing or duplicate entry ids and
// recomputing every day's totals. It reports whether anything changed.
func (s *FoodLogStore) migrate(state foodLogState) bool {
	changed := false
	seen := make(map[string]struct{})
	for date, log := range state.DailyLogs {
		l := log.Clone()
		if l.Meals == nil {
			l.Meals = []domain.FoodEntry{}
		}
		for i := range l.Meals {
			if _, dup := seen[l.Meals[i].ID]; l.Meals[i].ID == "" || dup {
				l.Meals[i].ID = s.opts.newID()
				changed = true
			}
			seen[l.Meals[i].ID] = struct{}{}
		}
		before := [4]float64{l.TotalCalories, l.TotalProtein, l.TotalCarbs, l.TotalFat}
		recomputeTotals(&l)
		if before != [4]float64{l.TotalCalories, l.TotalProtein, l.TotalCarbs, l.TotalFat} {
			changed = true
		}
		s.logs[date] = &l
	}
	return changed
}

// snapshotLocked serializes the ledger and hands it to the persister. The
// caller holds s.mu so snapshots are enqueued in mutation order.
func (s *FoodLogStore) snapshotLocked() {
	state := foodLogState{DailyLogs: make(map[string]domain.DailyLog, len(s.logs))}
	for date, log := range s.logs {
		state.DailyLogs[date] = *log
	}
	payload, err := encodeEnvelope(state)
	if err != nil {
		s.opts.logger.Error("encode food log snapshot", "error", err)
		return
	}
	s.persist.enqueue(payload)
}

// AddFoodEntry appends entry to the log for date, creating the day if needed.
// An empty entry id is replaced by a generated one. The stored entry is returned.
func (s *FoodLogStore) AddFoodEntry(ctx context.Context, date string, entry domain.FoodEntry) (domain.FoodEntry, error) {
	var stored domain.FoodEntry
	err := s.opts.run(ctx, opAddFoodEntry, func(context.Context) (string, error) {
		if err := validateDate(date); err != nil {
			return "", err
		}
		if err := validateEntry(entry); err != nil {
			return "", err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		stored = entry.Clone()
		if stored.ID == "" || s.hasEntryIDLocked(stored.ID) {
			stored.ID = s.opts.newID()
		}
		log, ok := s.logs[date]
		if !ok {
			log = &domain.DailyLog{Meals: []domain.FoodEntry{}}
			s.logs[date] = log
		}
		log.Meals = append(log.Meals, stored.Clone())
		recomputeTotals(log)
		s.snapshotLocked()
		return stored.ID, nil
	})
	if err != nil {
		return domain.FoodEntry{}, err
	}
	return stored, nil
}

// RemoveFoodEntry deletes the entry at index. It returns false without error
// when date has no log, and ErrInvalidIndex, leaving state untouched, when
// index is out of range.
func (s *FoodLogStore) RemoveFoodEntry(ctx context.Context, date string, index int) (bool, error) {
	var removed bool
	err := s.opts.run(ctx, opRemoveFoodEntry, func(context.Context) (string, error) {
		if err := validateDate(date); err != nil {
			return "", err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		log, ok := s.logs[date]
		if !ok {
			return "", errNoChange
		}
		if err := checkIndex(date, index, len(log.Meals)); err != nil {
			return "", err
		}
		id := log.Meals[index].ID
		s.removeAtLocked(log, index)
		removed = true
		return id, nil
	})
	return removed, err
}

// UpdateFoodEntry replaces the entry at index. Missing dates and out of range
// indexes behave as in RemoveFoodEntry. The entry keeps its id; any id on
// the replacement is ignored.
func (s *FoodLogStore) UpdateFoodEntry(ctx context.Context, date string, index int, entry domain.FoodEntry) (bool, error) {
	var updated bool
	err := s.opts.run(ctx, opUpdateFoodEntry, func(context.Context) (string, error) {
		if err := validateDate(date); err != nil {
			return "", err
		}
		if err := validateEntry(entry); err != nil {
			return "", err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		log, ok := s.logs[date]
		if !ok {
			return "", errNoChange
		}
		if err := checkIndex(date, index, len(log.Meals)); err != nil {
			return "", err
		}
		id := s.replaceAtLocked(log, index, entry)
		updated = true
		return id, nil
	})
	return updated, err
}

// RemoveFoodEntryByID deletes the entry with the given id from date. It
// returns false when the date or the id is absent.
func (s *FoodLogStore) RemoveFoodEntryByID(ctx context.Context, date, id string) (bool, error) {
	var removed bool
	err := s.opts.run(ctx, opRemoveFoodEntryByID, func(context.Context) (string, error) {
		if err := validateDate(date); err != nil {
			return "", err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		log, idx := s.findLocked(date, id)
		if idx < 0 {
			return id, errNoChange
		}
		s.removeAtLocked(log, idx)
		removed = true
		return id, nil
	})
	return removed, err
}

// UpdateFoodEntryByID replaces the entry with the given id. It returns false
// when the date or the id is absent.
func (s *FoodLogStore) UpdateFoodEntryByID(ctx context.Context, date, id string, entry domain.FoodEntry) (bool, error) {
	var updated bool
	err := s.opts.run(ctx, opUpdateFoodEntryByID, func(context.Context) (string, error) {
		if err := validateDate(date); err != nil {
			return "", err
		}
		if err := validateEntry(entry); err != nil {
			return "", err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		log, idx := s.findLocked(date, id)
		if idx < 0 {
			return id, errNoChange
		}
		s.replaceAtLocked(log, idx, entry)
		updated = true
		return id, nil
	})
	return updated, err
}

// ClearDay removes the log for date entirely. It returns false when there was none.
func (s *FoodLogStore) ClearDay(ctx context.Context, date string) bool {
	var cleared bool
	_ = s.opts.run(ctx, opClearDay, func(context.Context) (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.logs[date]; !ok {
			return date, errNoChange
		}
		delete(s.logs, date)
		s.snapshotLocked()
		cleared = true
		return date, nil
	})
	return cleared
}

func (s *FoodLogStore) removeAtLocked(log *domain.DailyLog, index int) {
	log.Meals = append(log.Meals[:index], log.Meals[index+1:]...)
	recomputeTotals(log)
	s.snapshotLocked()
}

func (s *FoodLogStore) replaceAtLocked(log *domain.DailyLog, index int, entry domain.FoodEntry) string {
	replacement := entry.Clone()
	replacement.ID = log.Meals[index].ID
	log.Meals[index] = replacement
	recomputeTotals(log)
	s.snapshotLocked()
	return replacement.ID
}

func (s *FoodLogStore) findLocked(date, id string) (*domain.DailyLog, int) {
	log, ok := s.logs[date]
	if !ok || id == "" {
		return nil, -1
	}
	for i, e := range log.Meals {
		if e.ID == id {
			return log, i
		}
	}
	return nil, -1
}

func (s *FoodLogStore) hasEntryIDLocked(id string) bool {
	for _, log := range s.logs {
		for _, e := range log.Meals {
			if e.ID == id {
				return true
			}
		}
	}
	return false
}

func checkIndex(date string, index, n int) error {
	if index < 0 || index >= n {
		return fmt.Errorf("%w: %d for %s with %d entries", domain.ErrInvalidIndex, index, date, n)
	}
	return nil
}

// GetDailyLog returns a copy of the log for date.
func (s *FoodLogStore) GetDailyLog(date string) (domain.DailyLog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log, ok := s.logs[date]
	if !ok {
		return domain.DailyLog{}, false
	}
	return log.Clone(), true
}

// EntriesByMealType groups the entries of date by meal type in display order.
// Meal types without entries are omitted.
func (s *FoodLogStore) EntriesByMealType(date string) []MealGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log, ok := s.logs[date]
	if !ok {
		return nil
	}
	var groups []MealGroup
	for _, mt := range domain.MealTypes {
		var g MealGroup
		for i, e := range log.Meals {
			if e.MealType == mt {
				g.Entries = append(g.Entries, IndexedEntry{Index: i, Entry: e.Clone()})
			}
		}
		if len(g.Entries) > 0 {
			g.MealType = mt
			groups = append(groups, g)
		}
	}
	return groups
}

// Dates returns every date with a log, ascending.
func (s *FoodLogStore) Dates() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dates := make([]string, 0, len(s.logs))
	for d := range s.logs {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// DailyLogsInRange returns the logs dated from..to inclusive, ascending.
func (s *FoodLogStore) DailyLogsInRange(from, to string) ([]DatedLog, error) {
	if err := validateDate(from); err != nil {
		return nil, err
	}
	if err := validateDate(to); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []DatedLog
	for date, log := range s.logs {
		// YYYY-MM-DD keys order lexically by date.
		if date >= from && date <= to {
			out = append(out, DatedLog{Date: date, Log: log.Clone()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Flush waits until all mutations so far are written to the adapter.
func (s *FoodLogStore) Flush(ctx context.Context) error { return s.persist.Flush(ctx) }

// Close flushes and stops the background writer.
func (s *FoodLogStore) Close(ctx context.Context) error { return s.persist.Close(ctx) }
