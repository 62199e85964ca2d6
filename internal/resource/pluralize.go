package resource

import "strings"

// Pluralize applies the fixed naming convention for resource type names:
// consonant+"y" becomes "ies", a trailing "s" gains "es", anything else gains
// "s". It is deliberately not a general-purpose English pluralizer.
func Pluralize(t string) string {
	if t == "" {
		return t
	}
	if strings.HasSuffix(t, "y") && !hasVowelY(t) {
		return t[:len(t)-1] + "ies"
	}
	if strings.HasSuffix(t, "s") {
		return t + "es"
	}
	return t + "s"
}

// hasVowelY reports whether t ends in a vowel followed by "y" ("day", "boy"),
// which pluralizes with a plain "s".
func hasVowelY(t string) bool {
	if len(t) < 2 {
		return false
	}
	switch t[len(t)-2] {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// Normalize maps a requested relationship or include name onto a declared
// relationship name: exact match first, then the "s" suffix, then the
// "y"->"ies" rule. Unrecognized names pass through unchanged; they resolve to
// nothing downstream rather than erroring, since clients may probe
// speculative include paths.
func Normalize(name string, declared map[string]Relationship) string {
	if _, ok := declared[name]; ok {
		return name
	}
	if _, ok := declared[name+"s"]; ok {
		return name + "s"
	}
	if strings.HasSuffix(name, "y") {
		ies := name[:len(name)-1] + "ies"
		if _, ok := declared[ies]; ok {
			return ies
		}
	}
	return name
}
