package store

import (
	"fmt"
	"strings"

	"mkstore/store/literal"
)

// FormatAssignment renders the single-variable statement stored in a .mk
// config script: mapping values merge via "key.update({...})", everything
// else appends via "key += value".
func FormatAssignment(key string, value any, pretty bool) (string, error) {
	render := literal.Render
	if pretty {
		render = literal.RenderPretty
	}
	rendered, err := render(value)
	if err != nil {
		return "", err
	}
	if _, ok := value.(map[string]any); ok {
		return fmt.Sprintf("%s.update(%s)", key, rendered), nil
	}
	return fmt.Sprintf("%s += %s", key, rendered), nil
}

// ApplyScript runs a restricted config script against vars. Exactly three
// statement forms exist:
//
//	key = <literal>
//	key += <literal>
//	key.update(<literal mapping>)
//
// Values are literals only; nothing is evaluated or executed. "+=" requires
// the variable to be seeded in vars and appends lists, adds numbers or
// concatenates strings. ".update" merges into a seeded mapping. A variable
// seeded with nil takes the value as a plain assignment in both forms, so a
// caller without a typed default still reads back what was stored. Comments
// and blank lines are skipped.
func ApplyScript(src string, vars map[string]any) error {
	rest := src
	for {
		rest = skipScriptSpace(rest)
		if rest == "" {
			return nil
		}

		key, tail, err := scanIdentifier(rest)
		if err != nil {
			return err
		}
		rest = strings.TrimLeft(tail, " \t")

		switch {
		case strings.HasPrefix(rest, "+="):
			v, remainder, err := literal.ParsePrefix(rest[2:])
			if err != nil {
				return fmt.Errorf("in %q statement: %w", key, err)
			}
			if err := applyAugment(vars, key, v); err != nil {
				return err
			}
			rest = remainder

		case strings.HasPrefix(rest, "="):
			v, remainder, err := literal.ParsePrefix(rest[1:])
			if err != nil {
				return fmt.Errorf("in %q statement: %w", key, err)
			}
			vars[key] = v
			rest = remainder

		case strings.HasPrefix(rest, ".update"):
			after := strings.TrimLeft(rest[len(".update"):], " \t")
			if !strings.HasPrefix(after, "(") {
				return fmt.Errorf("expected '(' after %s.update", key)
			}
			v, remainder, err := literal.ParsePrefix(after[1:])
			if err != nil {
				return fmt.Errorf("in %q statement: %w", key, err)
			}
			m, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("%s.update requires a mapping value, got %T", key, v)
			}
			remainder = strings.TrimLeft(remainder, " \t\r\n")
			if !strings.HasPrefix(remainder, ")") {
				return fmt.Errorf("expected ')' to close %s.update", key)
			}
			if err := applyUpdate(vars, key, m); err != nil {
				return err
			}
			rest = remainder[1:]

		default:
			return fmt.Errorf("unsupported statement for %q: only =, += and .update() are allowed", key)
		}
	}
}

func applyAugment(vars map[string]any, key string, v any) error {
	existing, ok := vars[key]
	if !ok {
		return fmt.Errorf("unknown variable %q", key)
	}
	switch e := existing.(type) {
	case nil:
		vars[key] = v
	case []any:
		add, ok := v.([]any)
		if !ok {
			return fmt.Errorf("cannot append %T to list variable %q", v, key)
		}
		merged := make([]any, 0, len(e)+len(add))
		merged = append(merged, e...)
		merged = append(merged, add...)
		vars[key] = merged
	case int:
		switch a := v.(type) {
		case int:
			vars[key] = e + a
		case float64:
			vars[key] = float64(e) + a
		default:
			return fmt.Errorf("cannot add %T to numeric variable %q", v, key)
		}
	case float64:
		switch a := v.(type) {
		case int:
			vars[key] = e + float64(a)
		case float64:
			vars[key] = e + a
		default:
			return fmt.Errorf("cannot add %T to numeric variable %q", v, key)
		}
	case string:
		a, ok := v.(string)
		if !ok {
			return fmt.Errorf("cannot concatenate %T to string variable %q", v, key)
		}
		vars[key] = e + a
	default:
		return fmt.Errorf("cannot apply += to variable %q of type %T", key, existing)
	}
	return nil
}

func applyUpdate(vars map[string]any, key string, m map[string]any) error {
	existing, ok := vars[key]
	if !ok {
		return fmt.Errorf("unknown variable %q", key)
	}
	if existing == nil {
		vars[key] = m
		return nil
	}
	em, ok := existing.(map[string]any)
	if !ok {
		return fmt.Errorf("variable %q is not a mapping", key)
	}
	for k, v := range m {
		em[k] = v
	}
	return nil
}

func skipScriptSpace(s string) string {
	for {
		s = strings.TrimLeft(s, " \t\r\n;")
		if !strings.HasPrefix(s, "#") {
			return s
		}
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			return ""
		}
		s = s[i+1:]
	}
}

func scanIdentifier(s string) (string, string, error) {
	i := 0
	for i < len(s) {
		c := s[i]
		isStart := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !(isStart || (i > 0 && c >= '0' && c <= '9')) {
			break
		}
		i++
	}
	if i == 0 {
		return "", "", fmt.Errorf("expected a variable name, found %q", s[0])
	}
	return s[:i], s[i:], nil
}
