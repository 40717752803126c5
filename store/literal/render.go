// Package literal implements the textual literal encoding used by the
// structured config files: nested mappings, sequences and scalars are
// rendered as source-style literals and parsed back without executing
// anything. Supported values are nil, bool, int, float64, string, []any and
// map[string]any with string keys.
package literal

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Containers whose compact form fits within this many characters stay on one
// line even in the pretty rendering.
const inlineLimit = 60

// Render returns the compact single-line encoding of v. Map keys are sorted,
// so the output is deterministic.
func Render(v any) (string, error) {
	var b strings.Builder
	if err := render(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderPretty returns a human-readable encoding of v: containers too large
// for one line are split one element per line with four-space indentation.
// Both renderings parse back to the identical value.
func RenderPretty(v any) (string, error) {
	// Validates the whole tree up front, so the recursion below cannot fail.
	if _, err := Render(v); err != nil {
		return "", err
	}
	var b strings.Builder
	renderPretty(&b, v, 0)
	return b.String(), nil
}

func render(b *strings.Builder, v any) error {
	switch x := v.(type) {
	case nil:
		b.WriteString("None")
	case bool:
		if x {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case int:
		b.WriteString(strconv.Itoa(x))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case float64:
		s, err := renderFloat(x)
		if err != nil {
			return err
		}
		b.WriteString(s)
	case string:
		b.WriteString(quote(x))
	case []any:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := render(b, e); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case map[string]any:
		b.WriteByte('{')
		for i, k := range sortedKeys(x) {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quote(k))
			b.WriteString(": ")
			if err := render(b, x[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	default:
		return fmt.Errorf("cannot render value of type %T", v)
	}
	return nil
}

func renderPretty(b *strings.Builder, v any, depth int) {
	compact, _ := Render(v)
	if len(compact) <= inlineLimit {
		b.WriteString(compact)
		return
	}

	indent := strings.Repeat("    ", depth+1)
	closing := strings.Repeat("    ", depth)

	switch x := v.(type) {
	case []any:
		b.WriteString("[\n")
		for _, e := range x {
			b.WriteString(indent)
			renderPretty(b, e, depth+1)
			b.WriteString(",\n")
		}
		b.WriteString(closing)
		b.WriteByte(']')
	case map[string]any:
		b.WriteString("{\n")
		for _, k := range sortedKeys(x) {
			b.WriteString(indent)
			b.WriteString(quote(k))
			b.WriteString(": ")
			renderPretty(b, x[k], depth+1)
			b.WriteString(",\n")
		}
		b.WriteString(closing)
		b.WriteByte('}')
	default:
		b.WriteString(compact)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func renderFloat(f float64) (string, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", errors.New("cannot render a non-finite float")
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Keep integral floats distinguishable from ints on the way back in.
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('\'')
	return b.String()
}
