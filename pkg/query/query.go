package query

import (
	"strings"

	"github.com/bitia-ru/anypod/pkg/types"
)

// kindPrefixes maps the accepted "<kind>/" prefixes to workload kinds.
// Matching is case-sensitive.
var kindPrefixes = map[string]types.WorkloadKind{
	"deployment":  types.Deployment,
	"statefulset": types.StatefulSet,
	"daemonset":   types.DaemonSet,
}

// Parse turns a raw "[<kind>/]<name-fragment>" string into a Query. It never fails.
//
// With exactly one "/" the prefix picks the kind, and an unknown prefix is
// dropped in favour of types.Any. Any other number of slashes leaves the whole
// string as the fragment.
func Parse(raw string) types.Query {
	parts := strings.Split(raw, "/")

	switch len(parts) {
	case 2:
		kind, ok := kindPrefixes[parts[0]]
		if !ok {
			kind = types.Any
		}
		return types.Query{WorkloadType: kind, NameFragment: parts[1]}
	default:
		return types.Query{WorkloadType: types.Any, NameFragment: raw}
	}
}
