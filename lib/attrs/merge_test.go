package attrs

import (
	"reflect"
	"testing"
)

func TestMergeWithFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		set       func(*Set)
		fallbacks []Pair
		want      string
	}{
		{
			name:      "fills absent key",
			set:       func(s *Set) {},
			fallbacks: []Pair{{"class", "btn"}, {"type", "button"}},
			want:      ` class="btn" type="button"`,
		},
		{
			name:      "call site wins",
			set:       func(s *Set) { s.Set("type", "submit") },
			fallbacks: []Pair{{"type", "button"}},
			want:      ` type="submit"`,
		},
		{
			name:      "fallback base keeps call site modifiers",
			set:       func(s *Set) { s.Set("class:active", true) },
			fallbacks: []Pair{{"class", "btn"}},
			want:      ` class="btn active"`,
		},
		{
			name:      "append marker fallback composes",
			set:       func(s *Set) { s.Set("class", "wide") },
			fallbacks: []Pair{{"class", "& btn"}},
			want:      ` class="wide btn"`,
		},
		{
			name:      "explicit false modifier is not overridden",
			set:       func(s *Set) { s.Set("class:active", false) },
			fallbacks: []Pair{{"class", "btn"}, {"class:active", true}},
			want:      ` class="btn"`,
		},
		{
			name:      "bare true fallback",
			set:       func(s *Set) {},
			fallbacks: []Pair{{"disabled", True}},
			want:      ` disabled`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			tt.set(s)
			before := s.String()

			merged := s.MergeWithFallbacks(tt.fallbacks)
			if got := merged.String(); got != tt.want {
				t.Errorf("MergeWithFallbacks().String() = %q, want %q", got, tt.want)
			}
			if s.String() != before {
				t.Errorf("MergeWithFallbacks mutated receiver: %q -> %q", before, s.String())
			}
		})
	}
}

func TestMergePreservesNestedStructure(t *testing.T) {
	s := New()
	s.Set("inner.class", "body")
	s.Set("inner.class:padded", true)
	s.Set("inner.class", "first &")
	s.Set("class", "card")

	wantInner := s.Nested("inner").Modifiers("class")

	merged := s.MergeWithFallbacks([]Pair{{"class", "btn"}, {"id", "x"}})

	gotInner := merged.Nested("inner").Modifiers("class")
	if !reflect.DeepEqual(gotInner, wantInner) {
		t.Errorf("nested modifiers changed: got %v, want %v", gotInner, wantInner)
	}
	if got, _ := merged.Nested("inner").Get("class"); got != "first body padded" {
		t.Errorf("nested class = %v, want %q", got, "first body padded")
	}
	if got, _ := merged.Get("class"); got != "card" {
		t.Errorf("class = %v, want card", got)
	}
}

func TestMergeNestedFallback(t *testing.T) {
	s := New()
	s.Set("inner.class:padded", true)

	merged := s.MergeWithFallbacks([]Pair{{"inner.class", "body"}})
	if got, _ := merged.Nested("inner").Get("class"); got != "body padded" {
		t.Errorf("nested class = %v, want %q", got, "body padded")
	}
	if _, err := s.Nested("inner").Get("class"); err != nil {
		t.Fatalf("receiver nested lookup error = %v", err)
	}
	if got, _ := s.Nested("inner").Get("class"); got != "padded" {
		t.Errorf("receiver nested class = %v, want padded", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := New()
	s.Set("inner.id", "a")
	s.Set("class:x", true)

	c := s.Clone()
	c.Set("inner.id", "b")
	c.Set("class:x", false)

	if got, _ := s.Nested("inner").Get("id"); got != "a" {
		t.Errorf("clone mutation leaked into nested: %v", got)
	}
	if !s.Modifiers("class")["x"] {
		t.Error("clone mutation leaked into modifiers")
	}
}
