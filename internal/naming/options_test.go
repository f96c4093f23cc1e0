package naming

import (
	"reflect"
	"testing"
)

func TestParseOptions(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want Options
	}{
		{"empty", "", Options{}},
		{"flag", "-resize", Options{"resize": nil}},
		{"args", "-quadrant(T)-resize", Options{"quadrant": {"T"}, "resize": nil}},
		{"decimal args", "-trim_perc(0.25,0,1,0.75)", Options{"trim_perc": {"0.25", "0", "1", "0.75"}}},
		{"last wins", "-quadrant(T)-quadrant(B)", Options{"quadrant": {"B"}}},
		{"flag overrides args", "-quadrant(T)-quadrant", Options{"quadrant": nil}},
		{"malformed dropped", "-quadrant(T-resize", Options{"resize": nil}},
		{"empty parens dropped", "-crop()-resize", Options{"resize": nil}},
		{"stray parens dropped", "-(1,2)--resize", Options{"resize": nil}},
		{"case sensitive", "-Resize-resize", Options{"Resize": nil, "resize": nil}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseOptions(tc.raw)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseOptions(%q) = %#v, want %#v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestOptionsAccessors(t *testing.T) {
	opts := ParseOptions("-resize-quadrant(C)")
	if !opts.Has("resize") || opts.Args("resize") != nil {
		t.Fatalf("resize should be a no-arg option")
	}
	if opts.Has("trim") {
		t.Fatalf("trim should be absent")
	}
	if got := opts.Names(); !reflect.DeepEqual(got, []string{"quadrant", "resize"}) {
		t.Fatalf("unexpected names: %v", got)
	}
}

func TestDimensionString(t *testing.T) {
	if Wildcard.String() != "_" || Dimension(-3).String() != "_" {
		t.Fatalf("wildcard should render as _")
	}
	if Dimension(42).String() != "42" || Dimension(42).Pixels() != 42 {
		t.Fatalf("unexpected rendering for 42")
	}
	if Wildcard.Pixels() != 0 {
		t.Fatalf("wildcard pixels should be 0")
	}
}

func TestParseOption(t *testing.T) {
	opt, ok := ParseOption("trim_perc(0,0.1,.5,1)")
	if !ok || opt.Name != "trim_perc" || !reflect.DeepEqual(opt.Args, []string{"0", "0.1", ".5", "1"}) {
		t.Fatalf("unexpected option %#v (%v)", opt, ok)
	}
	if opt, ok := ParseOption("resize"); !ok || opt.Args != nil {
		t.Fatalf("resize should parse as flag, got %#v", opt)
	}
	for _, bad := range []string{"", "quadrant(", "a b", "x(1)y"} {
		if _, ok := ParseOption(bad); ok {
			t.Fatalf("%q should not parse", bad)
		}
	}
}
