package k8s

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// ClientLabel marks the worker pods of a run.
const ClientLabel = "clusterbuster-client"

// Snapshot is the set of Pods captured alongside a report. It answers placement
// questions for the reporter.
type Snapshot struct {
	pods []corev1.Pod
}

// NewSnapshot wraps already-typed pods.
func NewSnapshot(pods []corev1.Pod) *Snapshot {
	return &Snapshot{pods: pods}
}

// SnapshotFromObjects converts the Pod entries of a report's api_objects list.
// Objects of other kinds are ignored.
func SnapshotFromObjects(objects []map[string]any) (*Snapshot, error) {
	s := &Snapshot{}
	for i, obj := range objects {
		if kind, _ := obj["kind"].(string); kind != "Pod" {
			continue
		}
		var pod corev1.Pod
		if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj, &pod); err != nil {
			return nil, fmt.Errorf("api_objects[%d]: %w", i, err)
		}
		s.pods = append(s.pods, pod)
	}
	return s, nil
}

func (s *Snapshot) Pods() []corev1.Pod { return s.pods }

// NodeFor returns the node of the first pod matching namespace and name.
func (s *Snapshot) NodeFor(namespace, pod string) (string, bool) {
	for i := range s.pods {
		p := &s.pods[i]
		if p.Namespace == namespace && p.Name == pod {
			return p.Spec.NodeName, true
		}
	}
	return "", false
}

// ClientsOnSameNode reports whether every client pod ran on one node. Any
// non-empty client label marks a client. With no client pods the answer is true.
func (s *Snapshot) ClientsOnSameNode() bool {
	node := ""
	for i := range s.pods {
		p := &s.pods[i]
		if !isClient(p) {
			continue
		}
		if node == "" {
			node = p.Spec.NodeName
		} else if p.Spec.NodeName != node {
			return false
		}
	}
	return true
}

func isClient(p *corev1.Pod) bool {
	return p.Labels[ClientLabel] != ""
}
