package resolver

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bitia-ru/anypod/pkg/types"
)

// ClusterQuery is the read-only view of a namespace the resolver needs.
// Implementations must return objects in a stable order; the resolver does not sort.
type ClusterQuery interface {
	ListWorkloads(ctx context.Context, kind types.WorkloadKind, namespace string) ([]types.WorkloadDescriptor, error)
	ListPods(ctx context.Context, namespace string) ([]types.PodCandidate, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStrict makes listing failures abort resolution instead of being
// treated as empty results.
func WithStrict() Option {
	return func(r *Resolver) { r.strict = true }
}

// WithVerbose enables step-by-step logging.
func WithVerbose(verbose bool) Option {
	return func(r *Resolver) { r.verbose = verbose }
}

// Resolver picks a single ready pod for a parsed query.
type Resolver struct {
	cluster ClusterQuery
	verbose bool
	strict  bool
}

func New(cluster ClusterQuery, opts ...Option) *Resolver {
	r := &Resolver{cluster: cluster}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the name of the first eligible pod for q in namespace.
//
// Kinds are searched one at a time, either the single kind named by the
// query or types.SearchOrder for types.Any. Within a kind only the first
// workload whose name starts with the fragment is considered. A listing
// failure counts as an empty list unless the resolver is strict, in which
// case it is returned.
func (r *Resolver) Resolve(ctx context.Context, q types.Query, namespace string) (string, bool, error) {
	kinds := types.SearchOrder
	if q.WorkloadType != types.Any {
		kinds = []types.WorkloadKind{q.WorkloadType}
	}

	for _, kind := range kinds {
		pod, found, err := r.resolveKind(ctx, kind, q.NameFragment, namespace)
		if err != nil {
			return "", false, err
		}
		if found {
			return pod, true, nil
		}
	}

	r.logf("No pod found for %q in namespace %s", q.NameFragment, namespace)
	return "", false, nil
}

func (r *Resolver) resolveKind(ctx context.Context, kind types.WorkloadKind, fragment, namespace string) (string, bool, error) {
	workloads, err := r.cluster.ListWorkloads(ctx, kind, namespace)
	if err != nil {
		if err := r.absorb(fmt.Errorf("listing %ss: %w", kind, err)); err != nil {
			return "", false, err
		}
	}

	workload, ok := firstWithPrefix(workloads, fragment)
	if !ok {
		r.logf("No %s matches %q", kind, fragment)
		return "", false, nil
	}
	r.logf("Matched %s/%s", kind, workload.Name)

	pods, err := r.cluster.ListPods(ctx, namespace)
	if err != nil {
		if err := r.absorb(fmt.Errorf("listing pods: %w", err)); err != nil {
			return "", false, err
		}
	}

	for _, pod := range pods {
		if !strings.HasPrefix(pod.Name, workload.Name) {
			continue
		}
		if !IsEligible(pod) {
			r.logf("Skipping pod %s (phase %q, not ready)", pod.Name, pod.Phase)
			continue
		}
		r.logf("Pod %s is running and ready", pod.Name)
		return pod.Name, true, nil
	}

	r.logf("%s/%s has no running and ready pods", kind, workload.Name)
	return "", false, nil
}

// absorb decides what happens to a failed listing call. The default is to
// log it and carry on with an empty result.
func (r *Resolver) absorb(err error) error {
	if r.strict {
		return err
	}
	r.logf("Ignoring error: %v", err)
	return nil
}

func firstWithPrefix(workloads []types.WorkloadDescriptor, fragment string) (types.WorkloadDescriptor, bool) {
	for _, w := range workloads {
		if strings.HasPrefix(w.Name, fragment) {
			return w, true
		}
	}
	return types.WorkloadDescriptor{}, false
}

func (r *Resolver) logf(format string, args ...interface{}) {
	if r.verbose {
		log.Printf("[resolver] "+format, args...)
	}
}
