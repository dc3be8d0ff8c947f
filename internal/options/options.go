// Package options validates caller-supplied option sets against a fixed set
// of recognized keys.
package options

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrUnknownOption is matched by every error Combine returns for keys that
// are absent from the defaults.
var ErrUnknownOption = errors.New("unrecognized option")

// UnknownOptionError names the offending keys, sorted.
type UnknownOptionError struct {
	Keys []string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unrecognized option(s): %s", strings.Join(e.Keys, ", "))
}

// Is reports whether target is ErrUnknownOption.
func (e *UnknownOptionError) Is(target error) bool {
	return target == ErrUnknownOption
}

// Pair is one entry of an ordered option list.
type Pair struct {
	Key   string
	Value any
}

// FromPairs collapses an ordered option list into a map. A later pair
// overrides an earlier one with the same key.
func FromPairs(pairs ...Pair) map[string]any {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		out[p.Key] = p.Value
	}
	return out
}

// Combine returns defaults overridden by given. Every key of given must be
// present in defaults; otherwise an *UnknownOptionError listing all unknown
// keys is returned. Neither input is modified.
func Combine(given, defaults map[string]any) (map[string]any, error) {
	var unknown []string
	for key := range given {
		if _, ok := defaults[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, &UnknownOptionError{Keys: unknown}
	}

	merged := maps.Clone(defaults)
	if merged == nil {
		merged = make(map[string]any, len(given))
	}
	maps.Copy(merged, given)
	return merged, nil
}

// Keys returns the sorted keys of an option map.
func Keys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
