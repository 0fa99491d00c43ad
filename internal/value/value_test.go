package value

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromAnyRoundTrip(t *testing.T) {
	in := map[string]any{
		"threshold": 0.75,
		"top_k":     int64(2),
		"enabled":   true,
		"name":      "score",
		"labels":    []any{"task", "time"},
		"modifier": map[string]any{
			"short_text_limit": int64(20),
		},
	}

	v := FromAny(in)
	out := v.Interface()

	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAccessors(t *testing.T) {
	v := FromAny(map[string]any{
		"i": int64(3),
		"f": 1.5,
		"s": "x",
		"b": true,
	})

	if got, ok := mustGet(t, v, "i").AsInt(); !ok || got != 3 {
		t.Errorf("AsInt = %d, %v", got, ok)
	}
	if got, ok := mustGet(t, v, "i").AsFloat(); !ok || got != 3.0 {
		t.Errorf("int AsFloat = %f, %v", got, ok)
	}
	if got, ok := mustGet(t, v, "f").AsFloat(); !ok || got != 1.5 {
		t.Errorf("AsFloat = %f, %v", got, ok)
	}
	if _, ok := mustGet(t, v, "f").AsString(); ok {
		t.Error("float should not read as string")
	}
	if got, ok := mustGet(t, v, "s").AsString(); !ok || got != "x" {
		t.Errorf("AsString = %q, %v", got, ok)
	}
	if got, ok := mustGet(t, v, "b").AsBool(); !ok || !got {
		t.Errorf("AsBool = %v, %v", got, ok)
	}
}

func mustGet(t *testing.T, v Value, key string) Value {
	t.Helper()
	e, ok := v.Get(key)
	if !ok {
		t.Fatalf("missing key %q", key)
	}
	return e
}

func TestMergeDeep(t *testing.T) {
	base := FromAny(map[string]any{
		"threshold": 0.75,
		"modifier": map[string]any{
			"short_text_limit": int64(20),
			"long_text_limit":  int64(200),
		},
	})
	overlay := FromAny(map[string]any{
		"threshold": 0.8,
		"modifier": map[string]any{
			"long_text_limit": int64(300),
		},
	})

	merged := base.Merge(overlay)

	want := map[string]any{
		"threshold": 0.8,
		"modifier": map[string]any{
			"short_text_limit": int64(20),
			"long_text_limit":  int64(300),
		},
	}
	if diff := cmp.Diff(want, merged.Interface()); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeScalarOverlayReplaces(t *testing.T) {
	base := FromAny(map[string]any{"a": map[string]any{"b": int64(1)}})
	merged := base.Merge(FromAny(map[string]any{"a": "flat"}))

	got, _ := merged.Get("a")
	if s, ok := got.AsString(); !ok || s != "flat" {
		t.Errorf("scalar overlay should replace object, got %v", got.Interface())
	}
}

func TestSetPathCreatesIntermediates(t *testing.T) {
	v := Null().SetPath(MustParsePath("layers.score.threshold"), Float(0.8))

	got, ok := v.GetPath(MustParsePath("layers.score.threshold"))
	if !ok {
		t.Fatal("path not set")
	}
	if f, _ := got.AsFloat(); f != 0.8 {
		t.Errorf("leaf = %f, want 0.8", f)
	}
}

func TestSetPathPreservesSiblings(t *testing.T) {
	base := FromAny(map[string]any{"a": map[string]any{"x": int64(1)}})
	v := base.SetPath(MustParsePath("a.y"), Int(2))

	if got, ok := v.GetPath(MustParsePath("a.x")); !ok {
		t.Error("sibling lost")
	} else if i, _ := got.AsInt(); i != 1 {
		t.Errorf("sibling = %d, want 1", i)
	}
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"a.b.c", "a.b.c", false},
		{"samples.3.id", "samples.3.id", false},
		{"a..b", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := ParsePath(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePath(%q) error = %v", tt.in, err)
			}
			if !tt.wantErr && p.String() != tt.want {
				t.Errorf("ParsePath(%q).String() = %q", tt.in, p.String())
			}
		})
	}
}

func TestParsePathIndexSegment(t *testing.T) {
	p := MustParsePath("samples.3.id")
	segs := p.Segments()
	if !segs[1].IsIndex || segs[1].Index != 3 {
		t.Errorf("segment 1 = %+v, want index 3", segs[1])
	}
}
