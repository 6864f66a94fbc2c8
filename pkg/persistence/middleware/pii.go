package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

// Mask replaces the values of keys matched by a PII pattern.
const Mask = "***"

type piiMiddleware struct {
	next     ports.ResultStore
	patterns []*regexp.Regexp
}

// CompilePatterns compiles PII key patterns, reporting the first invalid one.
func CompilePatterns(patternStrings []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pii pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return patterns, nil
}

// NewPIIMiddleware creates a middleware that masks binding values, and values
// inside a structured reply, whose key matches one of the patterns. Nested
// maps and slices are walked.
// Patterns must compile; use CompilePatterns to check user input first.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.ResultStore) ports.ResultStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, result domain.Result) error {
	// The caller's result is still delivered to other responders; mask a copy.
	result.Bindings = deepCopyMap(result.Bindings)
	maskMap(result.Bindings, m.patterns)

	result.Value = deepCopyValue(result.Value)
	maskValue(result.Value, m.patterns)

	return m.next.Save(ctx, result)
}

func (m *piiMiddleware) Load(ctx context.Context, messageID string) (domain.Result, error) {
	return m.next.Load(ctx, messageID)
}

func (m *piiMiddleware) Delete(ctx context.Context, messageID string) error {
	return m.next.Delete(ctx, messageID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if !masked {
			maskValue(v, patterns)
		}
	}
}

// maskValue masks in place; v must already be a copy.
func maskValue(v any, patterns []*regexp.Regexp) {
	switch val := v.(type) {
	case map[string]any:
		maskMap(val, patterns)
	case []any:
		for _, item := range val {
			maskValue(item, patterns)
		}
	}
}
