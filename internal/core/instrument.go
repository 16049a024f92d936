package core

import (
	"context"
	"errors"
	"time"

	"nutriplan/pkg/domain"
)

type operationMeta struct {
	entity domain.EntityType
	action Action
}

// auditedOperations lists the mutations that produce audit entries.
var auditedOperations = map[string]operationMeta{
	opAddFoodEntry:        {domain.EntityFoodEntry, ActionCreate},
	opRemoveFoodEntry:     {domain.EntityFoodEntry, ActionDelete},
	opUpdateFoodEntry:     {domain.EntityFoodEntry, ActionUpdate},
	opRemoveFoodEntryByID: {domain.EntityFoodEntry, ActionDelete},
	opUpdateFoodEntryByID: {domain.EntityFoodEntry, ActionUpdate},
	opClearDay:            {domain.EntityDailyLog, ActionDelete},
	opAddGroceryItem:      {domain.EntityGroceryItem, ActionCreate},
	opRemoveGroceryItem:   {domain.EntityGroceryItem, ActionDelete},
	opToggleGroceryItem:   {domain.EntityGroceryItem, ActionUpdate},
	opClearCheckedItems:   {domain.EntityGroceryItem, ActionDelete},
	opClearGroceryList:    {domain.EntityGroceryItem, ActionDelete},
	opSetGroceryItems:     {domain.EntityGroceryItem, ActionUpdate},
	opAddIngredients:      {domain.EntityGroceryItem, ActionCreate},
}

const (
	opAddFoodEntry        = "add_food_entry"
	opRemoveFoodEntry     = "remove_food_entry"
	opUpdateFoodEntry     = "update_food_entry"
	opRemoveFoodEntryByID = "remove_food_entry_by_id"
	opUpdateFoodEntryByID = "update_food_entry_by_id"
	opClearDay            = "clear_day"
	opAddGroceryItem      = "add_grocery_item"
	opRemoveGroceryItem   = "remove_grocery_item"
	opToggleGroceryItem   = "toggle_grocery_item"
	opClearCheckedItems   = "clear_checked_items"
	opClearGroceryList    = "clear_grocery_list"
	opSetGroceryItems     = "set_grocery_items"
	opAddIngredients      = "add_ingredients"
	opPersistPrefix       = "persist_"
)

// errNoChange is returned by a mutation whose target does not exist. run
// reports it as a successful no-op and does not pass it to the caller.
var errNoChange = errors.New("nothing to change")

// run wraps a mutation with tracing, metrics, audit and logging. fn returns
// the id of the affected entity, or "" when there is none.
func (o *serviceOptions) run(ctx context.Context, op string, fn func(ctx context.Context) (string, error)) error {
	ctx, span := o.tracer.Start(ctx, op)
	start := o.clock.Now()
	entityID, err := fn(ctx)
	noop := errors.Is(err, errNoChange)
	if noop {
		err = nil
	}
	duration := o.clock.Now().Sub(start)
	span.End(err)
	o.metrics.Observe(ctx, op, err == nil, duration)
	if noop {
		o.logger.Debug("store operation found nothing to change", "operation", op)
		o.recordAudit(ctx, op, entityID, AuditStatusNoop, duration, nil)
		return nil
	}
	if err != nil {
		o.logger.Error("store operation failed", "operation", op, "error", err)
		o.recordAudit(ctx, op, entityID, AuditStatusError, duration, err)
		return err
	}
	o.logger.Debug("store operation completed", "operation", op, "entity_id", entityID, "duration", duration)
	o.recordAudit(ctx, op, entityID, AuditStatusSuccess, duration, nil)
	return nil
}

func (o *serviceOptions) recordAudit(ctx context.Context, op, entityID string, status AuditStatus, duration time.Duration, err error) {
	meta, ok := auditedOperations[op]
	if !ok {
		return
	}
	entry := AuditEntry{
		Timestamp: o.clock.Now(),
		Operation: op,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  entityID,
		Status:    status,
		Duration:  duration,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	o.audit.Record(ctx, entry)
}
