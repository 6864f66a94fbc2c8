package schema

import (
	"sort"
	"strings"
)

// Schema maps payload fields to their types. Fields suffixed with "?" are optional.
type Schema map[string]Type

// Fields returns the declared field names in a stable order, without the optional marker.
func (s Schema) Fields() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, strings.TrimSuffix(k, "?"))
	}
	sort.Strings(out)
	return out
}

// Validate checks data against the schema and reports every failure at once.
func Validate(s Schema, data map[string]any) error {
	if len(s) == 0 {
		return nil
	}

	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		typ := s[key]
		field, optional := strings.CutSuffix(key, "?")
		value, exists := data[field]
		if !exists {
			if !optional {
				errs = append(errs, &ValidationError{Key: field, Reason: "required"})
			}
			continue
		}
		if err := typ.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: field, Reason: err.Error(), Value: value})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
