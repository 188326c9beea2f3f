package manifest

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// isExprDefined reports whether an optional attribute was actually present
// in source. The decoder populates absent optional expression fields with
// non-nil zero-width placeholders, so a nil check is not enough: a real
// attribute occupies bytes in the file, while a placeholder's source range
// starts and ends on the same byte.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

// decodeParams evaluates a params attribute into a Go map. Params are
// static values, so the expression is evaluated without a context and
// references to variables or functions fail.
func decodeParams(expr hcl.Expression) (map[string]any, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid params: %w", diags)
	}
	if val.IsNull() {
		return map[string]any{}, nil
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("params must be an object, got %s", ty.FriendlyName())
	}
	native, err := ctyToNative(val)
	if err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	m, ok := native.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return m, nil
}

// ctyToNative recursively converts a cty.Value into its most natural Go
// counterpart: string, float64, bool, []any or map[string]any. Numbers
// become float64, the common representation for a generic any target.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number to float64: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			keyStr := key.AsString()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", keyStr, err)
			}
			m[keyStr] = native
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported params value type: %s", ty.FriendlyName())
	}
}
