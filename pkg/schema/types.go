package schema

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Type validates a single payload value.
type Type interface {
	// Name is the declaration form of the type, e.g. "int" or "[string]".
	Name() string
	Validate(value any) error
}

type scalar struct {
	name  string
	check func(any) bool
}

func (t scalar) Name() string { return t.name }

func (t scalar) Validate(value any) error {
	if !t.check(value) {
		return fmt.Errorf("expected %s, got %T", t.name, value)
	}
	return nil
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

// isInt accepts Go integers and whole floats, since JSON decodes numbers to float64.
func isInt(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return n == math.Trunc(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n) == math.Trunc(float64(n))
	}
	return false
}

func isNumber(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return isInt(v)
}

// String accepts strings.
func String() Type { return scalar{"string", isString} }

// Int accepts integers, including whole floats.
func Int() Type { return scalar{"int", isInt} }

// Float accepts any number.
func Float() Type { return scalar{"float", isNumber} }

// Bool accepts booleans.
func Bool() Type { return scalar{"bool", isBool} }

// Any accepts every value, including nil.
func Any() Type { return scalar{"any", func(any) bool { return true }} }

// Object accepts JSON-like objects.
func Object() Type {
	return scalar{"object", func(v any) bool {
		_, ok := v.(map[string]any)
		return ok
	}}
}

type slice struct {
	elem Type
}

// Slice accepts slices whose elements all satisfy elem.
func Slice(elem Type) Type { return slice{elem: elem} }

func (t slice) Name() string { return "[" + t.elem.Name() + "]" }

func (t slice) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return fmt.Errorf("expected %s, got %T", t.Name(), value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// ParseType converts a declaration such as "int" or "[string]" into a Type.
func ParseType(decl string) (Type, error) {
	decl = strings.TrimSpace(decl)
	if strings.HasPrefix(decl, "[") && strings.HasSuffix(decl, "]") && len(decl) > 2 {
		elem, err := ParseType(decl[1 : len(decl)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	}
	switch decl {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float", "number":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "object", "map":
		return Object(), nil
	case "any", "":
		return Any(), nil
	}
	return nil, fmt.Errorf("unsupported type: %s", decl)
}

// ParseTypeMap converts field declarations into a Schema.
func ParseTypeMap(decls map[string]string) (Schema, error) {
	out := make(Schema, len(decls))
	for field, decl := range decls {
		t, err := ParseType(decl)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		out[field] = t
	}
	return out, nil
}
