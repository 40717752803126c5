package literal

import (
	"math"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"none", nil, "None"},
		{"true", true, "True"},
		{"false", false, "False"},
		{"int", 42, "42"},
		{"int64", int64(-9), "-9"},
		{"float", 2.5, "2.5"},
		{"integral float keeps the point", 3.0, "3.0"},
		{"string", "hello", "'hello'"},
		{"string escapes", "a'b\\c\nd", `'a\'b\\c\nd'`},
		{"control character", "\x1b", `'\x1b'`},
		{"empty list", []any{}, "[]"},
		{"list", []any{1, "a", nil}, "[1, 'a', None]"},
		{"empty dict", map[string]any{}, "{}"},
		{"dict keys sorted", map[string]any{"b": 2, "a": 1}, "{'a': 1, 'b': 2}"},
		{"nested", map[string]any{"x": []any{true}}, "{'x': [True]}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.v)
			if err != nil {
				t.Fatalf("Render(%#v) failed: %v", tt.v, err)
			}
			if got != tt.want {
				t.Errorf("Render(%#v) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		v    any
	}{
		{"unsupported type", struct{}{}},
		{"chan", make(chan int)},
		{"nan", math.NaN()},
		{"infinity", math.Inf(1)},
		{"unsupported nested value", []any{1, complex(1, 2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := Render(tt.v); err == nil {
				t.Errorf("Render(%#v) = %q, want an error", tt.v, got)
			}
			if got, err := RenderPretty(tt.v); err == nil {
				t.Errorf("RenderPretty(%#v) = %q, want an error", tt.v, got)
			}
		})
	}
}

func TestRenderPretty(t *testing.T) {
	t.Run("small values stay on one line", func(t *testing.T) {
		got, err := RenderPretty(map[string]any{"a": 1, "b": []any{1, 2, 3}})
		if err != nil {
			t.Fatalf("RenderPretty failed: %v", err)
		}
		want := "{'a': 1, 'b': [1, 2, 3]}"
		if got != want {
			t.Errorf("RenderPretty = %q, want %q", got, want)
		}
	})

	t.Run("large containers split one element per line", func(t *testing.T) {
		v := map[string]any{
			"alert_handler_event_types": []any{
				"started", "stopped", "restarted", "crashed", "initialized", "reloaded",
			},
		}
		got, err := RenderPretty(v)
		if err != nil {
			t.Fatalf("RenderPretty failed: %v", err)
		}
		want := strings.Join([]string{
			"{",
			"    'alert_handler_event_types': [",
			"        'started',",
			"        'stopped',",
			"        'restarted',",
			"        'crashed',",
			"        'initialized',",
			"        'reloaded',",
			"    ],",
			"}",
		}, "\n")
		if got != want {
			t.Errorf("RenderPretty =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("pretty output parses back to the same value", func(t *testing.T) {
		v := map[string]any{
			"long": strings.Repeat("x", 100),
			"deep": map[string]any{"list": []any{1.5, nil, "with a reasonably long string value"}},
		}
		pretty, err := RenderPretty(v)
		if err != nil {
			t.Fatalf("RenderPretty failed: %v", err)
		}
		back, err := Parse(pretty)
		if err != nil {
			t.Fatalf("Parse of pretty output failed: %v", err)
		}
		compactA, _ := Render(v)
		compactB, _ := Render(back)
		if compactA != compactB {
			t.Errorf("pretty round trip changed the value:\n%s\n%s", compactA, compactB)
		}
	})
}
