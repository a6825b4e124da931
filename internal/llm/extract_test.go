package llm

import (
	"errors"
	"reflect"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want any
	}{
		{"empty input yields empty object", "", map[string]any{}},
		{"whitespace only", "   \n\t ", map[string]any{}},
		{"whole object", `{"a":1}`, map[string]any{"a": float64(1)}},
		{"whole array", `[1,2]`, []any{float64(1), float64(2)}},
		{"object inside prose", "Sure! Here you go:\n{\"a\": \"b\"}\nHope that helps.", map[string]any{"a": "b"}},
		{"object inside code fence", "```json\n{\"ok\": true}\n```", map[string]any{"ok": true}},
		{"array inside prose", "The list: [\"x\", \"y\"] as requested.", []any{"x", "y"}},
		{"nested braces", `prefix {"outer": {"inner": 2}} suffix`, map[string]any{"outer": map[string]any{"inner": float64(2)}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.in)
			if err != nil {
				t.Fatalf("ExtractJSON(%q) error: %v", tc.in, err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ExtractJSON(%q) = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestExtractJSONFailure(t *testing.T) {
	for _, in := range []string{
		"no json here at all",
		"{broken",
	} {
		if _, err := ExtractJSON(in); !errors.Is(err, ErrJSONExtraction) {
			t.Fatalf("ExtractJSON(%q) err = %v, want ErrJSONExtraction", in, err)
		}
	}
}

func TestExtractJSONRoundTrip(t *testing.T) {
	// extract(serialize(x)) == x for plain JSON values.
	values := []string{
		`{"profile":{"raw_brief":"hi"},"n":3.5,"list":[1,"two",null,true]}`,
		`[]`,
		`{}`,
	}
	for _, v := range values {
		got, err := ExtractJSON(v)
		if err != nil {
			t.Fatalf("ExtractJSON(%q): %v", v, err)
		}
		again, err := ExtractJSON(v)
		if err != nil || !reflect.DeepEqual(got, again) {
			t.Fatalf("extraction not stable for %q", v)
		}
	}
}
