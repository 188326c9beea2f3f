package patchbay

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Keyed tags a type with an export key read at registration time.
// A keyed export resolves only through key lookups.
type Keyed interface {
	ExportKey() string
}

// export is one registry record. The declared type is the instance's
// concrete runtime type at the moment of registration.
type export struct {
	id           string
	declaredType reflect.Type
	instance     any
	key          string
	registeredAt time.Time
}

// ExportInfo describes one export record for introspection.
type ExportInfo struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Key          string    `json:"key,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Add registers an instance as an export. The record's type is the concrete
// runtime type of instance; its key comes from WithKey or, absent that, from
// the instance implementing Keyed. Registering the same instance again is
// allowed but creates a second, fully functional record.
func (b *Board) Add(instance any, opts ...ExportOption) error {
	b.ensureBooted()
	declared, err := exportableType(instance)
	if err != nil {
		b.logger.Error("Rejecting export.", "error", err)
		return err
	}
	if err := b.lock("Add"); err != nil {
		b.logger.Error("Re-entrant Add rejected.", "type", declared.String(), "error", err)
		return err
	}
	defer b.unlock()

	key := exportKeyFor(instance, opts)
	if b.containsLocked(instance) {
		b.logger.Warn("Instance already exported, adding a second record.", "type", declared.String())
	}
	rec := &export{
		id:           uuid.New().String(),
		declaredType: declared,
		instance:     instance,
		key:          key,
		registeredAt: time.Now(),
	}
	b.exports = append(b.exports, rec)
	b.logger.Debug("Registered export.", "type", declared.String(), "key", key, "id", rec.id)
	b.rec.ExportAdded()
	b.notifyLocked(rec)
	return nil
}

// Remove takes out every record whose instance is identical to the argument,
// then re-resolves the subscriptions each record matched so they observe the
// post-removal registry. Removing an instance that was never exported is a
// silent no-op.
func (b *Board) Remove(instance any) error {
	b.ensureBooted()
	if instance == nil || !reflect.TypeOf(instance).Comparable() {
		// Nothing of this shape can ever have been exported.
		return nil
	}
	if err := b.lock("Remove"); err != nil {
		b.logger.Error("Re-entrant Remove rejected.", "error", err)
		return err
	}
	defer b.unlock()

	kept := make([]*export, 0, len(b.exports))
	var removed []*export
	for _, rec := range b.exports {
		if rec.instance == instance {
			removed = append(removed, rec)
			continue
		}
		kept = append(kept, rec)
	}
	if len(removed) == 0 {
		return nil
	}
	b.exports = kept
	b.rec.ExportRemoved(len(removed))
	for _, rec := range removed {
		b.logger.Debug("Removed export.", "type", rec.declaredType.String(), "key", rec.key, "id", rec.id)
		b.notifyLocked(rec)
	}
	return nil
}

// Snapshot returns a copy of the current export records in registration
// order. Mutating the board afterwards never changes a returned snapshot.
func (b *Board) Snapshot() []ExportInfo {
	b.ensureBooted()
	if err := b.lock("Snapshot"); err != nil {
		b.logger.Error("Re-entrant Snapshot rejected.", "error", err)
		return nil
	}
	defer b.unlock()

	out := make([]ExportInfo, 0, len(b.exports))
	for _, rec := range b.exports {
		out = append(out, ExportInfo{
			ID:           rec.id,
			Type:         rec.declaredType.String(),
			Key:          rec.key,
			RegisteredAt: rec.registeredAt,
		})
	}
	return out
}

// containsLocked reports whether the instance already has a record.
func (b *Board) containsLocked(instance any) bool {
	for _, rec := range b.exports {
		if rec.instance == instance {
			return true
		}
	}
	return false
}

// exportKeyFor resolves the key for a new record. An explicit WithKey wins
// over the Keyed interface.
func exportKeyFor(instance any, opts []ExportOption) string {
	var o exportOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.key != "" {
		return o.key
	}
	if k, ok := instance.(Keyed); ok {
		return k.ExportKey()
	}
	return ""
}
