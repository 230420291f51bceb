package types

// WorkloadKind is the controller type a query targets.
type WorkloadKind int

const (
	Any WorkloadKind = iota
	Deployment
	StatefulSet
	DaemonSet
)

// SearchOrder is the order kinds are tried in when a query has no type hint.
var SearchOrder = []WorkloadKind{Deployment, StatefulSet, DaemonSet}

func (k WorkloadKind) String() string {
	switch k {
	case Deployment:
		return "Deployment"
	case StatefulSet:
		return "StatefulSet"
	case DaemonSet:
		return "DaemonSet"
	default:
		return "Any"
	}
}

// Query is a parsed "[<kind>/]<name-fragment>" string.
type Query struct {
	WorkloadType WorkloadKind
	NameFragment string
}

// WorkloadDescriptor names a Deployment, StatefulSet or DaemonSet.
// Pods belonging to it are expected to have names starting with Name.
type WorkloadDescriptor struct {
	Kind WorkloadKind
	Name string
}

// PodCondition mirrors a single entry of a pod's status conditions.
type PodCondition struct {
	Type   string
	Status string
}

// PodCandidate is a snapshot of a pod considered during resolution.
type PodCandidate struct {
	Name       string
	Phase      string
	Conditions []PodCondition
}

// WorkloadGroup holds the names of all workloads of one kind.
type WorkloadGroup struct {
	Kind  WorkloadKind
	Names []string
}
