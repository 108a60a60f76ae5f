package runtime

import (
	"fmt"
	"strings"
)

// IDError reports an ID that does not carry one of the registered prefixes.
type IDError struct {
	Kind     string
	Value    string
	Prefixes []string
}

func (e *IDError) Error() string {
	if len(e.Prefixes) == 0 {
		return fmt.Sprintf("runtime: empty %s", e.Kind)
	}
	return fmt.Sprintf("runtime: invalid %s %q: want prefix %s_", e.Kind, e.Value, strings.Join(e.Prefixes, "_ or "))
}

// CheckID accepts s iff it begins with one of prefixes followed by '_'.
// With no prefixes registered any non-empty string is accepted.
func CheckID(kind, s string, prefixes ...string) error {
	if len(prefixes) == 0 {
		if s == "" {
			return &IDError{Kind: kind, Value: s}
		}
		return nil
	}
	for _, p := range prefixes {
		if strings.HasPrefix(s, p+"_") {
			return nil
		}
	}
	return &IDError{Kind: kind, Value: s, Prefixes: prefixes}
}
