package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitia-ru/anypod/pkg/cluster"
	"github.com/bitia-ru/anypod/pkg/config"
	"github.com/bitia-ru/anypod/pkg/query"
	"github.com/bitia-ru/anypod/pkg/report"
	"github.com/bitia-ru/anypod/pkg/resolver"
	"github.com/bitia-ru/anypod/pkg/shell"

	flag "github.com/spf13/pflag"
	"k8s.io/client-go/kubernetes"
	utilexec "k8s.io/utils/exec"
)

var version = "dev"

type options struct {
	namespace  string
	exec       bool
	shell      string
	kubectl    string
	kubeconfig string
	context    string
	timeout    time.Duration
	strict     bool
	verbose    bool
	noColor    bool
	configPath string
}

func main() {
	var (
		opts        options
		showVersion bool
	)

	flag.StringVarP(&opts.namespace, "namespace", "n", "", "Namespace to search (default: namespace of the current context)")
	flag.BoolVarP(&opts.exec, "exec", "e", false, "Open an interactive shell in the resolved pod instead of printing its name")
	flag.StringVarP(&opts.shell, "shell", "s", "", "Shell to start with --exec (default: /bin/bash)")
	flag.StringVar(&opts.kubeconfig, "kubeconfig", "", "Path to kubeconfig (default: KUBECONFIG, ~/.kube/config or in-cluster)")
	flag.StringVar(&opts.context, "context", "", "Kubeconfig context to use")
	flag.DurationVar(&opts.timeout, "request-timeout", 0, "Timeout for each API request (default: 30s)")
	flag.BoolVar(&opts.strict, "strict", false, "Fail when a listing call fails instead of treating it as empty")
	flag.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")
	flag.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flag.StringVar(&opts.configPath, "config", "", "Path to config file (default: ~/.config/anypod/config.yaml)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("anypod %s\n", version)
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one QUERY argument is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyConfig(&opts, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conn, err := cluster.Connect(cluster.Options{
		Kubeconfig: opts.kubeconfig,
		Context:    opts.context,
		Timeout:    opts.timeout,
		Verbose:    opts.verbose,
	})
	if err != nil {
		log.Fatalf("Failed to create Kubernetes client: %v", err)
	}

	namespace := opts.namespace
	if namespace == "" {
		namespace, err = conn.DefaultNamespace()
		if err != nil {
			log.Fatalf("Failed to determine namespace: %v", err)
		}
	}

	if err := cluster.Ping(ctx, conn.Client); err != nil {
		log.Fatalf("Cannot reach the cluster: %v", err)
	}

	launcher := shell.New(utilexec.New(), opts.kubectl, opts.verbose)
	stdio := shell.Streams{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr}
	if err := run(ctx, conn.Client, namespace, args[0], opts, launcher, stdio); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// run resolves rawQuery in namespace and either prints the pod name, opens a
// shell in it, or lists the namespace's workloads when nothing matched.
// No match is not an error.
func run(ctx context.Context, client kubernetes.Interface, namespace, rawQuery string, opts options, launcher *shell.Launcher, stdio shell.Streams) error {
	q := query.Parse(rawQuery)

	resolverOpts := []resolver.Option{resolver.WithVerbose(opts.verbose)}
	if opts.strict {
		resolverOpts = append(resolverOpts, resolver.WithStrict())
	}
	r := resolver.New(cluster.NewLister(client, opts.verbose), resolverOpts...)
	printer := report.NewPrinter(stdio.Out, !opts.noColor)

	pod, found, err := r.Resolve(ctx, q, namespace)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", rawQuery, err)
	}

	if !found {
		groups, err := r.Enumerate(ctx, namespace)
		if err != nil {
			return fmt.Errorf("listing workloads in %s: %w", namespace, err)
		}
		printer.NoMatch(namespace, q.NameFragment, groups)
		return nil
	}

	if !opts.exec {
		printer.PodName(pod)
		return nil
	}

	// A failed launch is reported but does not undo the successful resolution.
	target := shell.Target{
		Kubeconfig: opts.kubeconfig,
		Context:    opts.context,
		Namespace:  namespace,
		Pod:        pod,
	}
	if err := launcher.Exec(ctx, target, opts.shell, stdio); err != nil {
		printer.ExecFailed(opts.kubectl, err)
	}
	return nil
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path != "" {
		return config.LoadConfigFrom(path)
	}
	return config.LoadConfig()
}

// applyConfig fills options left unset on the command line from cfg.
func applyConfig(opts *options, cfg *config.AppConfig) {
	if opts.shell == "" {
		opts.shell = cfg.Exec.Shell
	}
	if opts.kubectl == "" {
		opts.kubectl = cfg.Exec.Kubectl
	}
	if opts.timeout <= 0 {
		opts.timeout = cfg.Cluster.RequestTimeout
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: anypod [flags] QUERY\n\n")
	fmt.Fprintf(os.Stderr, "QUERY is [deployment/|statefulset/|daemonset/]<name-prefix>, e.g. \"web\" or \"statefulset/postgres\".\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}
