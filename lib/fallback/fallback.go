// Package fallback evaluates ordered lists of extraction strategies.
// Hostile markup and shifting JSON schemas mean any single lookup can stop
// working at any time; every independently-recoverable field group gets its
// own chain of alternatives.
package fallback

// Strategy is one candidate way of recovering a field group. Construction
// performs the lookup; Valid reports whether it found anything usable.
type Strategy interface {
	Valid() bool
}

// Resolve constructs each strategy in order and hands the first valid one
// to hit. When the whole chain comes up empty, miss runs instead, typically
// attaching a diagnostic to the record and leaving the field at its
// default.
func Resolve[S Strategy](constructors []func() S, hit func(S), miss func()) {
	for _, construct := range constructors {
		s := construct()
		if s.Valid() {
			hit(s)
			return
		}
	}
	if miss != nil {
		miss()
	}
}
