package resolver

import (
	"context"
	"fmt"

	"github.com/bitia-ru/anypod/pkg/types"
)

// Enumerate lists workload names in namespace grouped by kind, in
// types.SearchOrder. Kinds with no workloads are left out, and so are kinds
// whose listing failed unless the resolver is strict.
func (r *Resolver) Enumerate(ctx context.Context, namespace string) ([]types.WorkloadGroup, error) {
	var groups []types.WorkloadGroup
	for _, kind := range types.SearchOrder {
		workloads, err := r.cluster.ListWorkloads(ctx, kind, namespace)
		if err != nil {
			if err := r.absorb(fmt.Errorf("listing %ss: %w", kind, err)); err != nil {
				return nil, err
			}
			continue
		}
		if len(workloads) == 0 {
			continue
		}

		group := types.WorkloadGroup{Kind: kind, Names: make([]string, 0, len(workloads))}
		for _, w := range workloads {
			group.Names = append(group.Names, w.Name)
		}
		groups = append(groups, group)
	}
	return groups, nil
}
