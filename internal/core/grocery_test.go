package core

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nutriplan/internal/ingredient"
	"nutriplan/pkg/domain"
)

func names(items []domain.GroceryItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestAddItemAssignsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	s := newGrocery(t, newTestAdapter())
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		got := s.AddItem(ctx, domain.GroceryItem{ID: "caller-id", Name: "Milk", Category: "Dairy"})
		if got.ID == "caller-id" || seen[got.ID] {
			t.Fatalf("item %d: id %q reused", i, got.ID)
		}
		seen[got.ID] = true
	}
	if len(s.Items()) != 50 {
		t.Fatalf("expected 50 items, got %d", len(s.Items()))
	}
}

func TestToggleAndRemoveItem(t *testing.T) {
	ctx := context.Background()
	s := newGrocery(t, newTestAdapter())
	milk := s.AddItem(ctx, domain.GroceryItem{Name: "Milk", Category: "Dairy"})

	if !s.ToggleChecked(ctx, milk.ID) {
		t.Fatalf("toggle existing item")
	}
	if got, _ := s.Get(milk.ID); !got.Checked {
		t.Fatalf("expected checked item")
	}
	if !s.ToggleChecked(ctx, milk.ID) {
		t.Fatalf("toggle back")
	}
	if got, _ := s.Get(milk.ID); got.Checked {
		t.Fatalf("expected unchecked item")
	}
	if s.ToggleChecked(ctx, "missing") || s.RemoveItem(ctx, "missing") {
		t.Fatalf("unknown ids must be no-ops")
	}
	if !s.RemoveItem(ctx, milk.ID) {
		t.Fatalf("remove existing item")
	}
	if _, ok := s.Get(milk.ID); ok {
		t.Fatalf("item still present after remove")
	}
}

func TestClearOperations(t *testing.T) {
	ctx := context.Background()
	s := newGrocery(t, newTestAdapter())
	var ids []string
	for _, n := range []string{"A", "B", "C", "D", "E"} {
		ids = append(ids, s.AddItem(ctx, domain.GroceryItem{Name: n}).ID)
	}
	s.ToggleChecked(ctx, ids[1])
	s.ToggleChecked(ctx, ids[3])

	if n := s.ClearCheckedItems(ctx); n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	if diff := cmp.Diff([]string{"A", "C", "E"}, names(s.Items())); diff != "" {
		t.Fatalf("remaining order (-want +got):\n%s", diff)
	}
	if n := s.ClearCheckedItems(ctx); n != 0 {
		t.Fatalf("expected nothing to clear, got %d", n)
	}
	s.ClearGroceryList(ctx)
	if len(s.Items()) != 0 {
		t.Fatalf("expected empty list")
	}
	s.ClearGroceryList(ctx)
	if items := s.Items(); items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", items)
	}
}

func TestSortByCategoryIsPureAndStable(t *testing.T) {
	ctx := context.Background()
	s := newGrocery(t, newTestAdapter())
	for _, it := range []domain.GroceryItem{
		{Name: "bread", Category: "bakery"},
		{Name: "milk", Category: "Dairy"},
		{Name: "apples", Category: "Produce"},
		{Name: "cheese", Category: "Dairy"},
		{Name: "rolls", Category: "bakery"},
	} {
		s.AddItem(ctx, it)
	}
	canonical := s.Items()

	first := s.SortByCategory()
	second := s.SortByCategory()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("sort not repeatable:\n%s", diff)
	}
	// Upper case sorts before lower case byte-wise.
	if diff := cmp.Diff([]string{"milk", "cheese", "apples", "bread", "rolls"}, names(first)); diff != "" {
		t.Fatalf("sorted order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(canonical, s.Items()); diff != "" {
		t.Fatalf("canonical order mutated:\n%s", diff)
	}
}

func TestSetGroceryItemsRekeysDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newGrocery(t, newTestAdapter())
	s.AddItem(ctx, domain.GroceryItem{Name: "old"})
	s.SetGroceryItems(ctx, []domain.GroceryItem{
		{ID: "x", Name: "one"},
		{ID: "x", Name: "two"},
		{Name: "three"},
	})
	items := s.Items()
	if diff := cmp.Diff([]string{"one", "two", "three"}, names(items)); diff != "" {
		t.Fatalf("items (-want +got):\n%s", diff)
	}
	if items[0].ID != "x" {
		t.Fatalf("first id should be kept, got %q", items[0].ID)
	}
	seen := map[string]bool{}
	for _, it := range items {
		if it.ID == "" || seen[it.ID] {
			t.Fatalf("bad id %q in %+v", it.ID, items)
		}
		seen[it.ID] = true
	}
}

func TestAddIngredientsMergesAndCategorizes(t *testing.T) {
	ctx := context.Background()
	s := newGrocery(t, newTestAdapter())
	added := s.AddIngredients(ctx, []string{
		"2 cups flour",
		"",
		"1 Cup flour",
		"1/2 tsp salt",
		"3 cloves garlic",
		"salt",
		"1 lb chicken breast",
	})
	if len(added) != 6 {
		t.Fatalf("expected 6 touched items, got %d: %+v", len(added), added)
	}

	items := s.Items()
	if diff := cmp.Diff([]string{"flour", "salt", "garlic", "salt", "chicken breast"}, names(items)); diff != "" {
		t.Fatalf("items (-want +got):\n%s", diff)
	}
	flour := items[0]
	if flour.Quantity == nil || *flour.Quantity != 3 || flour.Unit != "cup" || flour.Category != ingredient.CategoryPantry {
		t.Fatalf("flour not merged: %+v", flour)
	}
	if items[2].Category != ingredient.CategoryProduce || items[2].Unit != "clove" {
		t.Fatalf("unexpected garlic: %+v", items[2])
	}
	if items[3].Quantity != nil || items[3].Unit != "" {
		t.Fatalf("unquantified salt should stay separate: %+v", items[3])
	}
	if items[4].Category != ingredient.CategoryMeat {
		t.Fatalf("unexpected chicken category: %+v", items[4])
	}

	// Checked items are never merge targets.
	s.ToggleChecked(ctx, flour.ID)
	s.AddIngredients(ctx, []string{"1 cup flour"})
	if got := len(s.Items()); got != 6 {
		t.Fatalf("expected a new flour line next to the checked one, got %d items", got)
	}
}

func TestGroceryHydrationRoundTrip(t *testing.T) {
	ctx := context.Background()
	adapter := newTestAdapter()
	s := newGrocery(t, adapter)
	s.AddIngredients(ctx, []string{"1.5 kg potatoes", "milk"})
	s.ToggleChecked(ctx, s.Items()[1].ID)
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded := newGrocery(t, adapter)
	if diff := cmp.Diff(s.Items(), reloaded.Items()); diff != "" {
		t.Fatalf("items differ after reload (-want +got):\n%s", diff)
	}
}

func TestGroceryMigratesLegacyDocument(t *testing.T) {
	ctx := context.Background()
	adapter := newTestAdapter()
	adapter.put(GroceryStorageKey, `{"items":[{"id":"1","name":"Eggs","category":"Dairy","checked":false},{"id":"1","name":"Ham","category":"Meat","checked":true}]}`)
	s := newGrocery(t, adapter)
	items := s.Items()
	if len(items) != 2 || items[0].ID != "1" || items[1].ID == "1" {
		t.Fatalf("unexpected migrated items: %+v", items)
	}
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if !strings.HasPrefix(adapter.raw(GroceryStorageKey), `{"version":1,`) {
		t.Fatalf("expected rewritten envelope, got %s", adapter.raw(GroceryStorageKey))
	}
}

func TestGrocerySeedsSampleData(t *testing.T) {
	s := newGrocery(t, newTestAdapter(), WithSampleData(true))
	items := s.Items()
	if len(items) != len(sampleGroceryNames) {
		t.Fatalf("expected %d seeded items, got %d", len(sampleGroceryNames), len(items))
	}
	for _, it := range items {
		if it.ID == "" || it.Category == "" {
			t.Fatalf("seeded item incomplete: %+v", it)
		}
	}
}

func TestGroceryAudit(t *testing.T) {
	ctx := context.Background()
	audit := &captureAuditRecorder{}
	s := newGrocery(t, newTestAdapter(), WithAuditRecorder(audit))
	item := s.AddItem(ctx, domain.GroceryItem{Name: "Tofu"})
	s.ToggleChecked(ctx, item.ID)
	s.RemoveItem(ctx, item.ID)

	for _, tc := range []struct {
		op     string
		action Action
	}{
		{opAddGroceryItem, ActionCreate},
		{opToggleGroceryItem, ActionUpdate},
		{opRemoveGroceryItem, ActionDelete},
	} {
		e, ok := audit.find(tc.op)
		if !ok || e.Action != tc.action || e.EntityID != item.ID || e.Entity != domain.EntityGroceryItem {
			t.Fatalf("%s: unexpected audit %+v (found=%v)", tc.op, e, ok)
		}
	}
}

func TestGroceryAuditMarksMissingItemAsNoop(t *testing.T) {
	ctx := context.Background()
	audit := &captureAuditRecorder{}
	s := newGrocery(t, newTestAdapter(), WithAuditRecorder(audit))

	if s.ToggleChecked(ctx, "missing") || s.RemoveItem(ctx, "missing") {
		t.Fatalf("expected no-op results for unknown id")
	}
	for _, op := range []string{opToggleGroceryItem, opRemoveGroceryItem} {
		e, ok := audit.find(op)
		if !ok || e.Status != AuditStatusNoop || e.EntityID != "missing" || e.Error != "" {
			t.Fatalf("%s: unexpected audit %+v (found=%v)", op, e, ok)
		}
	}
}
