package cluster

import (
	"context"
	"fmt"
	"log"

	"github.com/bitia-ru/anypod/pkg/types"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Lister answers workload and pod listing queries for the resolver.
type Lister struct {
	client  kubernetes.Interface
	verbose bool
}

func NewLister(client kubernetes.Interface, verbose bool) *Lister {
	return &Lister{client: client, verbose: verbose}
}

// ListWorkloads returns the Deployments, StatefulSets or DaemonSets in
// namespace, in the order the API server returned them.
func (l *Lister) ListWorkloads(ctx context.Context, kind types.WorkloadKind, namespace string) ([]types.WorkloadDescriptor, error) {
	var names []string

	switch kind {
	case types.Deployment:
		list, err := l.client.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		for _, d := range list.Items {
			names = append(names, d.Name)
		}

	case types.StatefulSet:
		list, err := l.client.AppsV1().StatefulSets(namespace).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		for _, ss := range list.Items {
			names = append(names, ss.Name)
		}

	case types.DaemonSet:
		list, err := l.client.AppsV1().DaemonSets(namespace).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		for _, ds := range list.Items {
			names = append(names, ds.Name)
		}

	default:
		return nil, fmt.Errorf("unsupported workload kind: %s", kind)
	}

	l.logf("Found %d %s(s) in %s", len(names), kind, namespace)

	workloads := make([]types.WorkloadDescriptor, 0, len(names))
	for _, name := range names {
		workloads = append(workloads, types.WorkloadDescriptor{Kind: kind, Name: name})
	}
	return workloads, nil
}

// ListPods returns every pod in namespace with its phase and conditions.
func (l *Lister) ListPods(ctx context.Context, namespace string) ([]types.PodCandidate, error) {
	list, err := l.client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	l.logf("Found %d pod(s) in %s", len(list.Items), namespace)

	pods := make([]types.PodCandidate, 0, len(list.Items))
	for i := range list.Items {
		pods = append(pods, podCandidate(&list.Items[i]))
	}
	return pods, nil
}

func podCandidate(pod *corev1.Pod) types.PodCandidate {
	c := types.PodCandidate{
		Name:  pod.Name,
		Phase: string(pod.Status.Phase),
	}
	for _, cond := range pod.Status.Conditions {
		c.Conditions = append(c.Conditions, types.PodCondition{
			Type:   string(cond.Type),
			Status: string(cond.Status),
		})
	}
	return c
}

func (l *Lister) logf(format string, args ...interface{}) {
	if l.verbose {
		log.Printf("[cluster] "+format, args...)
	}
}
