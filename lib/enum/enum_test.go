package enum

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseDefault(t *testing.T) {
	tests := []struct {
		in       string
		ok       bool
		allowed  []string
		required bool
	}{
		{",a,b", true, []string{"a", "b"}, false},
		{"a,b,c", true, []string{"a", "b", "c"}, true},
		{"a,,b", true, []string{"a", "b"}, true},
		{"a,b,a", true, []string{"a", "b"}, true},
		{"plain", false, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			e, ok := ParseDefault(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseDefault(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if !ok {
				return
			}
			if !reflect.DeepEqual(e.Allowed, tt.allowed) {
				t.Errorf("Allowed = %v, want %v", e.Allowed, tt.allowed)
			}
			if e.Required != tt.required {
				t.Errorf("Required = %v, want %v", e.Required, tt.required)
			}
		})
	}
}

func TestEnumString(t *testing.T) {
	e, _ := ParseDefault(",sm,md")
	if e.String() != ",sm,md" {
		t.Errorf("String() = %q", e.String())
	}
}

func TestResolveFlags(t *testing.T) {
	e, _ := ParseDefault("light,dark-mode,high-contrast")
	res := Resolver{}.Resolve("theme", "dark-mode", e)

	if !res.OK() {
		t.Fatalf("Resolve() rejections = %v", res.Rejections)
	}
	want := map[string]bool{"themeDarkMode": true}
	if !reflect.DeepEqual(res.Flags, want) {
		t.Errorf("Flags = %v, want %v", res.Flags, want)
	}
	if _, bound := res.Flags["themeLight"]; bound {
		t.Error("unselected value must not be bound")
	}
}

func TestResolveMultiValue(t *testing.T) {
	e, _ := ParseDefault(",bold,italic,underline")
	res := Resolver{}.Resolve("style", "bold  underline", e)

	if res.Value() != "bold underline" {
		t.Errorf("Value() = %q", res.Value())
	}
	want := map[string]bool{"styleBold": true, "styleUnderline": true}
	if !reflect.DeepEqual(res.Flags, want) {
		t.Errorf("Flags = %v, want %v", res.Flags, want)
	}
}

func TestResolveRejections(t *testing.T) {
	e, _ := ParseDefault("primary,secondary,danger")
	res := Resolver{}.Resolve("variant", "primry Danger zzzzzz", e)

	if len(res.Rejections) != 3 {
		t.Fatalf("Rejections = %d, want 3", len(res.Rejections))
	}
	tests := []struct {
		token      string
		suggestion string
	}{
		{"primry", "primary"},
		{"Danger", "danger"},
		{"zzzzzz", ""},
	}
	for i, tt := range tests {
		r := res.Rejections[i]
		if r.Token != tt.token || r.Suggestion != tt.suggestion {
			t.Errorf("Rejections[%d] = %+v, want token %q suggestion %q", i, r, tt.token, tt.suggestion)
		}
		if !reflect.DeepEqual(r.Allowed, e.Allowed) {
			t.Errorf("Rejections[%d].Allowed = %v", i, r.Allowed)
		}
	}
	if !strings.Contains(res.Rejections[0].Error(), `did you mean "primary"`) {
		t.Errorf("Error() = %q", res.Rejections[0].Error())
	}
	if strings.Contains(res.Rejections[2].Error(), "did you mean") {
		t.Errorf("Error() should not suggest: %q", res.Rejections[2].Error())
	}
}

func TestSuggestCutoff(t *testing.T) {
	allowed := []string{"small", "medium", "large"}
	if got := Suggest("smal", allowed, 0.6); got != "small" {
		t.Errorf("Suggest(smal) = %q, want small", got)
	}
	if got := Suggest("xyz", allowed, 0.6); got != "" {
		t.Errorf("Suggest(xyz) = %q, want empty", got)
	}
	if got := Suggest("smal", allowed, 0.95); got != "" {
		t.Errorf("Suggest(smal, 0.95) = %q, want empty", got)
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "abc", 1},
		{"abcd", "abce", 0.75},
		{"abc", "", 0},
	}
	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); got != tt.want {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFlagName(t *testing.T) {
	tests := []struct {
		prop, token, want string
	}{
		{"theme", "dark-mode", "themeDarkMode"},
		{"size", "lg", "sizeLg"},
		{"variant", "extra-large-x", "variantExtraLargeX"},
		{"tone", "darkMode", "toneDarkMode"},
	}
	for _, tt := range tests {
		if got := FlagName(tt.prop, tt.token); got != tt.want {
			t.Errorf("FlagName(%q, %q) = %q, want %q", tt.prop, tt.token, got, tt.want)
		}
	}
}
