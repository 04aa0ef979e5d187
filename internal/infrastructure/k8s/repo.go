package k8s

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/selection"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Repo reads worker pods from a live cluster, for reports produced without an
// api_objects snapshot.
type Repo struct {
	core kubernetes.Interface
}

func New(kubeconfigPath, contextName string) (*Repo, error) {
	cfg, err := loadRESTConfig(kubeconfigPath, contextName)
	if err != nil {
		return nil, err
	}
	cfg.QPS = 30
	cfg.Burst = 60
	core, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Repo{core: core}, nil
}

// NewWithClient wraps an existing clientset.
func NewWithClient(core kubernetes.Interface) *Repo {
	return &Repo{core: core}
}

func loadRESTConfig(kubeconfigPath, contextName string) (*rest.Config, error) {
	if cfg, err := rest.InClusterConfig(); err == nil {
		return cfg, nil
	}
	loadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfigPath}
	overrides := &clientcmd.ConfigOverrides{}
	if contextName != "" {
		overrides.CurrentContext = contextName
	}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
}

// clientSelector matches pods carrying the client label.
func clientSelector() (labels.Selector, error) {
	req, err := labels.NewRequirement(ClientLabel, selection.Exists, nil)
	if err != nil {
		return nil, err
	}
	return labels.NewSelector().Add(*req), nil
}

// LoadSnapshot lists the client pods of namespace ("" or "all" for every
// namespace) into a Snapshot.
func (r *Repo) LoadSnapshot(ctx context.Context, ns string) (*Snapshot, error) {
	if ns == "all" {
		ns = ""
	}
	sel, err := clientSelector()
	if err != nil {
		return nil, err
	}
	pods, err := r.core.CoreV1().Pods(ns).List(ctx, metav1.ListOptions{LabelSelector: sel.String()})
	if err != nil {
		return nil, fmt.Errorf("list client pods: %w", err)
	}
	return NewSnapshot(pods.Items), nil
}
