package conflict

import (
	"reflect"
	"sort"

	"github.com/noteflow/syncserver/internal/domain"
)

// FieldDiff returns the sorted union of keys present on either side whose
// canonicalized values differ. Exported for the data-diff HTTP endpoint in
// addition to its internal use during conflict detection.
func FieldDiff(server, client domain.Payload) []string {
	return fieldDiff(server, client)
}

// fieldDiff returns the sorted union of keys present on either side whose
// canonicalized values differ.
func fieldDiff(server, client domain.Payload) []string {
	seen := make(map[string]bool)
	for k := range server {
		seen[k] = true
	}
	for k := range client {
		seen[k] = true
	}
	var diff []string
	for k := range seen {
		if !canonicalEqual(server[k], client[k]) {
			diff = append(diff, k)
		}
	}
	sort.Strings(diff)
	return diff
}

// canonicalEqual implements the canonicalization rule: deep structural
// equality, arrays compared by element, objects by key, numeric and string
// comparisons exact.
func canonicalEqual(a, b interface{}) bool {
	a = canonicalize(a)
	b = canonicalize(b)
	return reflect.DeepEqual(a, b)
}

// canonicalize normalizes JSON-ish numeric types (int, int64, float64) to
// float64 so that 1 and 1.0 and int64(1) compare equal, matching values that
// round-tripped through JSON versus values constructed in Go code.
func canonicalize(v interface{}) interface{} {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = canonicalize(e)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, e := range x {
			out[k] = canonicalize(e)
		}
		return out
	default:
		return v
	}
}
