package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"nutriplan/internal/ingredient"
	"nutriplan/pkg/domain"
)

// GroceryStore owns the ordered shopping list.
type GroceryStore struct {
	mu      sync.RWMutex
	items   []domain.GroceryItem
	opts    serviceOptions
	persist *persister
}

type groceryState struct {
	Items []domain.GroceryItem `json:"items"`
}

// NewGroceryStore hydrates a grocery list from the adapter.
func NewGroceryStore(ctx context.Context, adapter domain.StateStore, opts ...Option) (*GroceryStore, error) {
	s := &GroceryStore{items: []domain.GroceryItem{}, opts: buildOptions(opts)}
	dirty, err := s.hydrate(ctx, adapter)
	if err != nil {
		return nil, err
	}
	s.persist = newPersister(GroceryStorageKey, adapter, &s.opts)
	if dirty {
		s.mu.Lock()
		s.snapshotLocked()
		s.mu.Unlock()
	}
	return s, nil
}

func (s *GroceryStore) hydrate(ctx context.Context, adapter domain.StateStore) (bool, error) {
	version, raw, ok, err := loadDocument(ctx, adapter, GroceryStorageKey)
	if err != nil {
		return false, err
	}
	if !ok {
		if !s.opts.sampleData {
			return false, nil
		}
		s.items = sampleGroceryItems(s.opts.newID)
		s.opts.logger.Info("grocery list seeded with sample data", "items", len(s.items))
		return true, nil
	}
	var state groceryState
	if err := json.Unmarshal(raw, &state); err != nil {
		return false, fmt.Errorf("decode %s state: %w", GroceryStorageKey, err)
	}
	changed := s.replaceLocked(state.Items)
	if version < SchemaVersion {
		s.opts.logger.Info("grocery list migrated", "from_version", version, "to_version", SchemaVersion)
		return true, nil
	}
	return changed, nil
}

// replaceLocked installs items, issuing fresh ids for empty or repeated ones.
// It reports whether any id was reassigned.
func (s *GroceryStore) replaceLocked(items []domain.GroceryItem) bool {
	changed := false
	seen := make(map[string]struct{}, len(items))
	next := make([]domain.GroceryItem, len(items))
	for i, it := range items {
		cp := it.Clone()
		if _, dup := seen[cp.ID]; cp.ID == "" || dup {
			cp.ID = s.opts.newID()
			changed = true
		}
		seen[cp.ID] = struct{}{}
		next[i] = cp
	}
	s.items = next
	return changed
}

func (s *GroceryStore) snapshotLocked() {
	payload, err := encodeEnvelope(groceryState{Items: s.items})
	if err != nil {
		s.opts.logger.Error("encode grocery snapshot", "error", err)
		return
	}
	s.persist.enqueue(payload)
}

func (s *GroceryStore) indexLocked(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// AddItem appends item under a freshly generated id; any id the caller set is
// ignored. The stored item is returned.
func (s *GroceryStore) AddItem(ctx context.Context, item domain.GroceryItem) domain.GroceryItem {
	stored := item.Clone()
	_ = s.opts.run(ctx, opAddGroceryItem, func(context.Context) (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		stored.ID = s.opts.newID()
		s.items = append(s.items, stored.Clone())
		s.snapshotLocked()
		return stored.ID, nil
	})
	return stored
}

// RemoveItem deletes the item with id. It returns false when there is none.
func (s *GroceryStore) RemoveItem(ctx context.Context, id string) bool {
	var removed bool
	_ = s.opts.run(ctx, opRemoveGroceryItem, func(context.Context) (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.indexLocked(id)
		if i < 0 {
			return id, errNoChange
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		s.snapshotLocked()
		removed = true
		return id, nil
	})
	return removed
}

// ToggleChecked flips the checked flag of the item with id.
func (s *GroceryStore) ToggleChecked(ctx context.Context, id string) bool {
	var toggled bool
	_ = s.opts.run(ctx, opToggleGroceryItem, func(context.Context) (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.indexLocked(id)
		if i < 0 {
			return id, errNoChange
		}
		s.items[i].Checked = !s.items[i].Checked
		s.snapshotLocked()
		toggled = true
		return id, nil
	})
	return toggled
}

// ClearCheckedItems drops every checked item, keeping the order of the rest,
// and returns how many were removed.
func (s *GroceryStore) ClearCheckedItems(ctx context.Context) int {
	var removed int
	_ = s.opts.run(ctx, opClearCheckedItems, func(context.Context) (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		kept := s.items[:0]
		for _, it := range s.items {
			if !it.Checked {
				kept = append(kept, it)
			}
		}
		removed = len(s.items) - len(kept)
		s.items = kept
		if removed > 0 {
			s.snapshotLocked()
		}
		return "", nil
	})
	return removed
}

// ClearGroceryList empties the list.
func (s *GroceryStore) ClearGroceryList(ctx context.Context) {
	_ = s.opts.run(ctx, opClearGroceryList, func(context.Context) (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.items = []domain.GroceryItem{}
		s.snapshotLocked()
		return "", nil
	})
}

// SetGroceryItems replaces the whole list. Items with empty or duplicate ids
// are given fresh ones.
func (s *GroceryStore) SetGroceryItems(ctx context.Context, items []domain.GroceryItem) {
	_ = s.opts.run(ctx, opSetGroceryItems, func(context.Context) (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.replaceLocked(items)
		s.snapshotLocked()
		return "", nil
	})
}

// AddIngredients parses recipe lines and adds them to the list. A line whose
// name, unit and category match an unchecked item with the same quantity
// presence is merged into it by summing quantities. Lines that parse to an
// empty name are skipped. The added or updated items are returned in input order.
func (s *GroceryStore) AddIngredients(ctx context.Context, lines []string) []domain.GroceryItem {
	var touched []domain.GroceryItem
	_ = s.opts.run(ctx, opAddIngredients, func(context.Context) (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, line := range lines {
			p := ingredient.ParseLine(line)
			if p.Name == "" {
				continue
			}
			item := domain.GroceryItem{Name: p.Name, Category: ingredient.Categorize(p.Name)}
			if p.Unit != "" {
				item.Unit = ingredient.CanonicalUnit(p.Unit)
			}
			if p.Quantity != nil {
				item.Quantity = domain.Float(*p.Quantity)
			}
			if i := s.mergeTargetLocked(item); i >= 0 {
				if item.Quantity != nil {
					sum := decimal.NewFromFloat(*s.items[i].Quantity).Add(decimal.NewFromFloat(*item.Quantity))
					s.items[i].Quantity = domain.Float(sum.InexactFloat64())
				}
				touched = append(touched, s.items[i].Clone())
				continue
			}
			item.ID = s.opts.newID()
			s.items = append(s.items, item)
			touched = append(touched, item.Clone())
		}
		if len(touched) > 0 {
			s.snapshotLocked()
		}
		return "", nil
	})
	return touched
}

func (s *GroceryStore) mergeTargetLocked(item domain.GroceryItem) int {
	for i, it := range s.items {
		if it.Checked || !strings.EqualFold(it.Name, item.Name) {
			continue
		}
		if it.Unit != item.Unit || it.Category != item.Category {
			continue
		}
		if (it.Quantity == nil) != (item.Quantity == nil) {
			continue
		}
		return i
	}
	return -1
}

// Items returns a copy of the list in canonical order.
func (s *GroceryStore) Items() []domain.GroceryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Get returns the item with id.
func (s *GroceryStore) Get(id string) (domain.GroceryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.items[i].Clone(), true
	}
	return domain.GroceryItem{}, false
}

// SortByCategory returns the items ordered by category, byte-wise and stable.
// The stored order is not changed.
func (s *GroceryStore) SortByCategory() []domain.GroceryItem {
	out := s.Items()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// Flush waits until all mutations so far are written to the adapter.
func (s *GroceryStore) Flush(ctx context.Context) error { return s.persist.Flush(ctx) }

// Close flushes and stops the background writer.
func (s *GroceryStore) Close(ctx context.Context) error { return s.persist.Close(ctx) }

func cloneItems(items []domain.GroceryItem) []domain.GroceryItem {
	out := make([]domain.GroceryItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
