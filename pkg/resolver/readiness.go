package resolver

import "github.com/bitia-ru/anypod/pkg/types"

const (
	phaseRunning   = "Running"
	conditionReady = "Ready"
	statusTrue     = "True"
)

// IsEligible reports whether a pod is Running and has a Ready=True condition.
// Missing status data counts as not ready.
func IsEligible(pod types.PodCandidate) bool {
	if pod.Phase != phaseRunning {
		return false
	}
	for _, cond := range pod.Conditions {
		if cond.Type == conditionReady && cond.Status == statusTrue {
			return true
		}
	}
	return false
}
