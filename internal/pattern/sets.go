package pattern

import "unicode"

// Predicate reports whether a character belongs to a set.
type Predicate func(r rune) bool

const punctuationChars = "(),.;:\"'!?-`"

// The named classes and their negations are confined to the printable ASCII
// characters.
func inDomain(r rune) bool {
	return r >= 0x20 && r <= 0x7e
}

// Predicate returns the membership test for a set whose members are known at
// compile time. Sets with a dereferenced body must be resolved with a
// Resolver; for those Predicate returns nil.
func (s *Set) Predicate() Predicate {
	if s.Deref != nil {
		return nil
	}
	return s.predicate(s.Items)
}

func (s *Set) predicate(items []SetItem) Predicate {
	var base Predicate
	if s.Class == Defined {
		base = enumerated(items)
	} else {
		base = classPredicate(s.Class)
	}

	if !s.Negate {
		return base
	}
	return func(r rune) bool {
		return inDomain(r) && !base(r)
	}
}

func classPredicate(c Class) Predicate {
	switch c {
	case Alphabetic:
		return func(r rune) bool {
			return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		}
	case Uppercase:
		return func(r rune) bool { return r >= 'A' && r <= 'Z' }
	case Lowercase:
		return func(r rune) bool { return r >= 'a' && r <= 'z' }
	case Numeric:
		return func(r rune) bool { return r >= '0' && r <= '9' }
	case Space:
		return func(r rune) bool { return r == ' ' }
	case Printable:
		return inDomain
	case Punctuation:
		return func(r rune) bool {
			for _, p := range punctuationChars {
				if r == p {
					return true
				}
			}
			return false
		}
	}
	return func(rune) bool { return false }
}

// enumerated builds the predicate of a D set. Listed characters match even
// when they are outside printable ASCII.
func enumerated(items []SetItem) Predicate {
	// Small sets are the common case; a bitmap covers ASCII members.
	var ascii [128]bool
	var wide []SetItem
	for _, it := range items {
		if it.High < 128 {
			for r := it.Low; r <= it.High; r++ {
				ascii[r] = true
			}
			continue
		}
		wide = append(wide, it)
	}

	return func(r rune) bool {
		if r >= 0 && r < 128 {
			return ascii[r]
		}
		for _, it := range wide {
			if r >= it.Low && r <= it.High {
				return true
			}
		}
		return false
	}
}

// sameChar compares two characters under a case mode.
func sameChar(have, want rune, mode CaseMode) bool {
	if have == want {
		return true
	}
	if mode == CaseExact {
		return false
	}
	return unicode.ToLower(have) == unicode.ToLower(want)
}
