package patchbay

import "reflect"

// typeOf returns the reflect.Type for T, interface types included.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// as converts a matched instance to the requested type. Matching guarantees
// assignability, which a plain type assertion does not cover when the
// concrete types differ.
func as[T any](instance any) T {
	if v, ok := instance.(T); ok {
		return v
	}
	out := reflect.New(typeOf[T]()).Elem()
	out.Set(reflect.ValueOf(instance))
	return out.Interface().(T)
}

// matchesType reports whether an export declared as type d satisfies a
// request for type t.
func matchesType(d, t reflect.Type) bool {
	if d == t {
		return true
	}
	if t.Kind() == reflect.Interface {
		return d.Implements(t)
	}
	return d.AssignableTo(t)
}

// collectLocked returns the instances matching a request, in registration
// order. A non-empty key matches exports carrying exactly that key and
// ignores type; otherwise unkeyed exports are matched by type. Keyed exports
// never match type requests and unkeyed exports never match key requests.
func (b *Board) collectLocked(t reflect.Type, key string) []any {
	var out []any
	for _, rec := range b.exports {
		if key != "" {
			if rec.key == key {
				out = append(out, rec.instance)
			}
			continue
		}
		if rec.key == "" && t != nil && matchesType(rec.declaredType, t) {
			out = append(out, rec.instance)
		}
	}
	return out
}

// warnAmbiguousLocked logs when a single-valued request matches more than one
// export. The first registered instance wins; insertion order is the only
// tie-break.
func (b *Board) warnAmbiguousLocked(by, value string, matches int) {
	if matches <= 1 {
		return
	}
	b.logger.Warn("Ambiguous single-valued resolution, using first in registration order.", by, value, "matches", matches)
	b.rec.Ambiguity()
}

// First returns the export satisfying type T. When several match, it warns
// and returns the earliest registered one. The second return is false when
// nothing matches.
func First[T any](b *Board) (T, bool) {
	var zero T
	t := typeOf[T]()
	b.ensureBooted()
	if err := b.lock("First"); err != nil {
		b.logger.Error("Re-entrant resolution rejected.", "type", t.String(), "error", err)
		return zero, false
	}
	defer b.unlock()

	matches := b.collectLocked(t, "")
	b.warnAmbiguousLocked("type", t.String(), len(matches))
	b.rec.Resolution("first", len(matches))
	if len(matches) == 0 {
		return zero, false
	}
	return as[T](matches[0]), true
}

// FirstOf is the runtime-typed counterpart of First, for callers that only
// learn the requested type at runtime. The boot catalog uses it to skip
// re-registering a singleton whose type is already exported.
func (b *Board) FirstOf(t reflect.Type) (any, bool) {
	b.ensureBooted()
	if t == nil {
		return nil, false
	}
	if err := b.lock("FirstOf"); err != nil {
		b.logger.Error("Re-entrant resolution rejected.", "type", t.String(), "error", err)
		return nil, false
	}
	defer b.unlock()

	matches := b.collectLocked(t, "")
	b.warnAmbiguousLocked("type", t.String(), len(matches))
	b.rec.Resolution("first", len(matches))
	if len(matches) == 0 {
		return nil, false
	}
	return matches[0], true
}

// All returns every export satisfying type T, in registration order. The
// returned slice is a snapshot: later board mutations never change it.
func All[T any](b *Board) []T {
	t := typeOf[T]()
	b.ensureBooted()
	if err := b.lock("All"); err != nil {
		b.logger.Error("Re-entrant resolution rejected.", "type", t.String(), "error", err)
		return nil
	}
	defer b.unlock()

	matches := b.collectLocked(t, "")
	b.rec.Resolution("all", len(matches))
	out := make([]T, 0, len(matches))
	for _, m := range matches {
		out = append(out, as[T](m))
	}
	return out
}

// Has reports whether at least one export satisfies type T.
func Has[T any](b *Board) bool {
	t := typeOf[T]()
	b.ensureBooted()
	if err := b.lock("Has"); err != nil {
		b.logger.Error("Re-entrant resolution rejected.", "type", t.String(), "error", err)
		return false
	}
	defer b.unlock()
	return len(b.collectLocked(t, "")) > 0
}

// FirstByKey returns the export registered under key. When several match, it
// warns and returns the earliest registered one.
func (b *Board) FirstByKey(key string) (any, bool) {
	b.ensureBooted()
	if key == "" {
		b.logger.Warn("Key lookup with an empty key matches nothing.")
		return nil, false
	}
	if err := b.lock("FirstByKey"); err != nil {
		b.logger.Error("Re-entrant resolution rejected.", "key", key, "error", err)
		return nil, false
	}
	defer b.unlock()

	matches := b.collectLocked(nil, key)
	b.warnAmbiguousLocked("key", key, len(matches))
	b.rec.Resolution("first_key", len(matches))
	if len(matches) == 0 {
		return nil, false
	}
	return matches[0], true
}

// AllByKey returns every export registered under key, in registration order.
func (b *Board) AllByKey(key string) []any {
	b.ensureBooted()
	if key == "" {
		b.logger.Warn("Key lookup with an empty key matches nothing.")
		return nil
	}
	if err := b.lock("AllByKey"); err != nil {
		b.logger.Error("Re-entrant resolution rejected.", "key", key, "error", err)
		return nil
	}
	defer b.unlock()

	matches := b.collectLocked(nil, key)
	b.rec.Resolution("all_key", len(matches))
	return matches
}

// HasKey reports whether at least one export is registered under key.
func (b *Board) HasKey(key string) bool {
	b.ensureBooted()
	if key == "" {
		return false
	}
	if err := b.lock("HasKey"); err != nil {
		b.logger.Error("Re-entrant resolution rejected.", "key", key, "error", err)
		return false
	}
	defer b.unlock()
	return len(b.collectLocked(nil, key)) > 0
}
