package attrs

// MergeWithFallbacks returns a copy of s with fallbacks applied. s is not
// modified.
//
// Plain and passthrough fallbacks only fill keys that have no literal entry.
// Modifier and marker fallbacks add tokens the call site did not mention, so
// an explicit class:active=false is never flipped on by a fallback. Dotted
// fallbacks are applied to the child set under the same rules, leaving the
// child's existing modifiers intact.
func (s *Set) MergeWithFallbacks(fallbacks []Pair) *Set {
	out := s.Clone()
	for _, fb := range fallbacks {
		out.fallback(fb.Key, fb.Value)
	}
	return out
}

func (s *Set) fallback(key string, value any) {
	r := s.Classify(key, value)
	switch r.Kind {
	case Passthrough, Plain:
		if _, ok := s.entries[key]; !ok {
			s.put(key, value)
		}
	case Nested:
		s.group(r.Key).fallback(r.Rest, value)
	case Modifier:
		if !s.mentions(r.Key, r.Token) {
			s.modifiers(s.appends, r.Key).set(r.Token, truthy(value))
		}
	case AppendMarker:
		for _, tok := range r.Tokens {
			if !s.mentions(r.Key, tok) {
				s.modifiers(s.appends, r.Key).set(tok, true)
			}
		}
	case PrependMarker:
		for _, tok := range r.Tokens {
			if !s.mentions(r.Key, tok) {
				s.modifiers(s.prepends, r.Key).set(tok, true)
			}
		}
	}
}

func (s *Set) mentions(base, token string) bool {
	if t, ok := s.appends[base]; ok && t.has(token) {
		return true
	}
	if t, ok := s.prepends[base]; ok && t.has(token) {
		return true
	}
	return false
}
