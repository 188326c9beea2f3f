package patchbay

import "reflect"

// importTag is the struct tag marking a field as an import slot. An empty
// tag value imports by the field's type, any other value imports by that
// key, and "-" skips the field.
const importTag = "patchbay"

// Slot describes one import slot a subscriber exposes. Type is the expected
// scalar type, or the element type when Collect is set. A non-empty Key
// switches the slot to key lookup. Assign receives the full ordered match
// set for collection slots and at most one instance for scalar slots; an
// empty set clears the slot.
type Slot struct {
	Name    string
	Key     string
	Type    reflect.Type
	Collect bool
	Assign  func(matches []any)
}

// Importer declares import slots explicitly instead of through struct tags.
// When a subscribe target implements it, only its declared slots are used.
type Importer interface {
	ImportSlots() []Slot
}

// subscription binds one live slot to its target.
type subscription struct {
	target any
	slot   Slot
}

// Subscribe discovers every import slot on target, assigns each from the
// current export set, and keeps them assigned as exports change until
// Unsubscribe is called. Scalar slots receive the first match or the zero
// value, collection slots the full ordered match set.
func (b *Board) Subscribe(target any) error {
	slots, err := slotsFor(target)
	if err != nil {
		b.logger.Error("Subscribe rejected.", "error", err)
		return err
	}
	return b.subscribeSlots(target, slots)
}

// SubscribeMember subscribes a single named import slot on target. An
// existing subscription for that member is replaced, which makes it the
// fine-grained re-subscription primitive.
func (b *Board) SubscribeMember(target any, member string) error {
	slots, err := slotsFor(target)
	if err != nil {
		b.logger.Error("Subscribe rejected.", "member", member, "error", err)
		return err
	}
	for _, slot := range slots {
		if slot.Name == member {
			return b.subscribeSlots(target, []Slot{slot})
		}
	}
	err = &SlotError{Member: member, Reason: "no import slot with this name"}
	b.logger.Error("Subscribe rejected.", "error", err)
	return err
}

// Unsubscribe clears every subscribed member on target (scalar slots to the
// zero value, collection slots to empty) and drops the subscriptions.
// Calling it again is a silent no-op.
func (b *Board) Unsubscribe(target any) {
	if target == nil || !reflect.TypeOf(target).Comparable() {
		return
	}
	b.ensureBooted()
	if err := b.lock("Unsubscribe"); err != nil {
		b.logger.Error("Re-entrant Unsubscribe rejected.", "error", err)
		return
	}
	defer b.unlock()

	dropped := b.dropLocked(target, "", true)
	if dropped > 0 {
		b.logger.Debug("Unsubscribed target.", "slots", dropped)
	}
}

// UnsubscribeMember clears and drops a single subscribed member on target.
func (b *Board) UnsubscribeMember(target any, member string) {
	if target == nil || !reflect.TypeOf(target).Comparable() {
		return
	}
	b.ensureBooted()
	if err := b.lock("UnsubscribeMember"); err != nil {
		b.logger.Error("Re-entrant UnsubscribeMember rejected.", "error", err)
		return
	}
	defer b.unlock()

	dropped := b.dropLocked(target, member, true)
	if dropped > 0 {
		b.logger.Debug("Unsubscribed member.", "member", member)
	}
}

// subscribeSlots validates and records slots for target, replacing any
// previous subscription of the same member, and performs the immediate
// resolve-and-assign for each.
func (b *Board) subscribeSlots(target any, slots []Slot) error {
	for i := range slots {
		if err := validateSlot(slots[i]); err != nil {
			b.logger.Error("Subscribe rejected.", "error", err)
			return err
		}
	}
	b.ensureBooted()
	if err := b.lock("Subscribe"); err != nil {
		b.logger.Error("Re-entrant Subscribe rejected.", "error", err)
		return err
	}
	defer b.unlock()

	for _, slot := range slots {
		b.dropLocked(target, slot.Name, false)
		sub := &subscription{target: target, slot: slot}
		b.subs = append(b.subs, sub)
		b.applyLocked(sub)
		b.logger.Debug("Subscribed import slot.", "member", slot.Name, "key", slot.Key, "collect", slot.Collect)
	}
	return nil
}

// dropLocked removes subscriptions for target, scoped to one member when
// member is non-empty. With clear set, each dropped slot is emptied first.
// Reports how many subscriptions were dropped.
func (b *Board) dropLocked(target any, member string, clear bool) int {
	kept := b.subs[:0]
	dropped := 0
	for _, sub := range b.subs {
		if sub.target != target || (member != "" && sub.slot.Name != member) {
			kept = append(kept, sub)
			continue
		}
		if clear {
			b.assignSafely(sub, nil)
		}
		dropped++
	}
	b.subs = kept
	return dropped
}

// applyLocked re-resolves one subscription against the current export set
// and writes the result into its slot.
func (b *Board) applyLocked(sub *subscription) {
	matches := b.collectLocked(sub.slot.Type, sub.slot.Key)
	if !sub.slot.Collect && len(matches) > 1 {
		b.logger.Warn("Ambiguous single-valued resolution for import slot, assigning first in registration order.",
			"member", sub.slot.Name, "matches", len(matches))
		b.rec.Ambiguity()
		matches = matches[:1]
	}
	b.assignSafely(sub, matches)
}

// assignSafely runs a slot assignment, recovering a panicking Assign so one
// broken subscriber cannot abort the mutation that triggered the pass.
func (b *Board) assignSafely(sub *subscription, matches []any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Import slot assignment panicked, skipping subscription.",
				"member", sub.slot.Name, "panic", r)
		}
	}()
	sub.slot.Assign(matches)
}

// slotsFor discovers the import slots of a subscribe target. Targets either
// implement Importer or are non-nil pointers to structs with tagged fields.
func slotsFor(target any) ([]Slot, error) {
	if target == nil {
		return nil, &SlotError{Reason: "subscribe target is nil"}
	}
	if !reflect.TypeOf(target).Comparable() {
		return nil, &SlotError{Reason: "subscribe target type is not comparable, unsubscribe could never match it"}
	}
	if imp, ok := target.(Importer); ok {
		return imp.ImportSlots(), nil
	}
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, &SlotError{Reason: "subscribe target must implement Importer or be a non-nil struct pointer"}
	}
	elem := v.Elem()
	st := elem.Type()
	var slots []Slot
	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		tag, ok := field.Tag.Lookup(importTag)
		if !ok || tag == "-" {
			continue
		}
		slot, err := fieldSlot(elem.Field(i), field, tag)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// fieldSlot builds the slot for one tagged struct field. Slice fields take
// the collection path with the element type driving matching; fixed-size
// arrays are rejected because they cannot receive a variable match set.
func fieldSlot(value reflect.Value, field reflect.StructField, key string) (Slot, error) {
	if !value.CanSet() {
		return Slot{}, &SlotError{Member: field.Name, Reason: "field is not settable, it must be exported"}
	}
	ft := field.Type
	switch ft.Kind() {
	case reflect.Slice:
		return Slot{
			Name:    field.Name,
			Key:     key,
			Type:    ft.Elem(),
			Collect: true,
			Assign: func(matches []any) {
				if len(matches) == 0 {
					value.Set(reflect.Zero(ft))
					return
				}
				s := reflect.MakeSlice(ft, 0, len(matches))
				for _, m := range matches {
					s = reflect.Append(s, reflect.ValueOf(m))
				}
				value.Set(s)
			},
		}, nil
	case reflect.Array:
		return Slot{}, &SlotError{Member: field.Name, Reason: "fixed-size arrays cannot receive a variable match set, use a slice"}
	default:
		return Slot{
			Name: field.Name,
			Key:  key,
			Type: ft,
			Assign: func(matches []any) {
				if len(matches) == 0 {
					value.Set(reflect.Zero(ft))
					return
				}
				value.Set(reflect.ValueOf(matches[0]))
			},
		}, nil
	}
}

// validateSlot rejects slot declarations the board could never serve.
func validateSlot(slot Slot) error {
	if slot.Name == "" {
		return &SlotError{Reason: "slot has no member name"}
	}
	if slot.Assign == nil {
		return &SlotError{Member: slot.Name, Reason: "slot has no assign function"}
	}
	if slot.Key == "" && slot.Type == nil {
		return &SlotError{Member: slot.Name, Reason: "slot declares neither a type nor a key"}
	}
	return nil
}
