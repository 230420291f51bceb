package cluster

import (
	"context"
	"fmt"
	"log"
	"time"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// Options selects the kubeconfig and context used to reach the cluster.
// Empty fields fall back to the default loading rules (KUBECONFIG,
// ~/.kube/config, then in-cluster config).
type Options struct {
	Kubeconfig string
	Context    string
	Timeout    time.Duration
	Verbose    bool
}

// Connection holds a clientset together with the client config it was built from.
type Connection struct {
	Client       kubernetes.Interface
	clientConfig clientcmd.ClientConfig
}

// Connect builds a Kubernetes client from opts. It does not contact the API server.
func Connect(opts Options) (*Connection, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if opts.Kubeconfig != "" {
		loadingRules.ExplicitPath = opts.Kubeconfig
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: opts.Context}
	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides)

	restConfig, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("loading client config: %w", err)
	}
	if opts.Timeout > 0 {
		restConfig.Timeout = opts.Timeout
	}
	if opts.Verbose {
		log.Printf("[cluster] Using API server %s", restConfig.Host)
	}

	client, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("creating clientset: %w", err)
	}

	return &Connection{Client: client, clientConfig: clientConfig}, nil
}

// DefaultNamespace returns the namespace of the selected context, or the
// pod's own namespace when running in-cluster.
func (c *Connection) DefaultNamespace() (string, error) {
	namespace, _, err := c.clientConfig.Namespace()
	if err != nil {
		return "", fmt.Errorf("determining namespace: %w", err)
	}
	if namespace == "" {
		return "", fmt.Errorf("no namespace set in kubeconfig context")
	}
	return namespace, nil
}

// Ping makes a lightweight API call to verify the cluster is reachable.
// ServerVersion takes no context, so cancellation of ctx abandons the call
// instead of aborting it.
func Ping(ctx context.Context, client kubernetes.Interface) error {
	done := make(chan error, 1)
	go func() {
		_, err := client.Discovery().ServerVersion()
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("contacting API server: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("contacting API server: %w", ctx.Err())
	}
}
