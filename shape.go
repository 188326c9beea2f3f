package patchbay

import "reflect"

// exportableType returns the declared type for an instance, or a ShapeError
// when the instance cannot be exported. Containers are rejected because
// collection imports assemble their own sequence from singular exports.
// Removal matches records by identity, so the type must also be comparable.
func exportableType(instance any) (reflect.Type, error) {
	if instance == nil {
		return nil, &ShapeError{Type: "nil", Reason: "instance is nil"}
	}
	t := reflect.TypeOf(instance)
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return nil, &ShapeError{Type: t.String(), Reason: "container types cannot be exported directly, export their members individually"}
	case reflect.Func:
		return nil, &ShapeError{Type: t.String(), Reason: "func values do not support the identity comparison removal relies on"}
	case reflect.Pointer:
		if reflect.ValueOf(instance).IsNil() {
			return nil, &ShapeError{Type: t.String(), Reason: "instance is a nil pointer"}
		}
	}
	if !t.Comparable() {
		return nil, &ShapeError{Type: t.String(), Reason: "type is not comparable, so removal could never match it by identity"}
	}
	return t, nil
}
