package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	utilexec "k8s.io/utils/exec"
)

// Streams are the terminal handles handed over to the remote shell.
type Streams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// Target identifies the pod a shell is opened in. Kubeconfig and Context
// must match the ones the pod was resolved with; empty values leave kubectl's
// own defaults in place.
type Target struct {
	Kubeconfig string
	Context    string
	Namespace  string
	Pod        string
}

// Launcher opens interactive shells in pods through kubectl.
type Launcher struct {
	exec    utilexec.Interface
	kubectl string
	verbose bool
}

func New(execer utilexec.Interface, kubectl string, verbose bool) *Launcher {
	if kubectl == "" {
		kubectl = "kubectl"
	}
	return &Launcher{exec: execer, kubectl: kubectl, verbose: verbose}
}

// Args returns the kubectl arguments for an interactive shell in t.
func Args(t Target, shell string) []string {
	var args []string
	if t.Kubeconfig != "" {
		args = append(args, "--kubeconfig", t.Kubeconfig)
	}
	if t.Context != "" {
		args = append(args, "--context", t.Context)
	}
	return append(args, "-n", t.Namespace, "exec", "-it", t.Pod, "--", shell)
}

// Exec runs `kubectl exec -it` against t and blocks until the session ends.
// A non-zero exit status from the remote shell is not treated as an error.
func (l *Launcher) Exec(ctx context.Context, t Target, shell string, streams Streams) error {
	path, err := l.exec.LookPath(l.kubectl)
	if err != nil {
		return fmt.Errorf("%s not found in PATH: %w", l.kubectl, err)
	}

	args := Args(t, shell)
	l.logf("Running %s %s", path, strings.Join(args, " "))

	cmd := l.exec.CommandContext(ctx, path, args...)
	cmd.SetStdin(streams.In)
	cmd.SetStdout(streams.Out)
	cmd.SetStderr(streams.ErrOut)

	if err := cmd.Run(); err != nil {
		var exitErr utilexec.ExitError
		if errors.As(err, &exitErr) {
			l.logf("Session ended with exit status %d", exitErr.ExitStatus())
			return nil
		}
		return err
	}
	return nil
}

func (l *Launcher) logf(format string, args ...interface{}) {
	if l.verbose {
		log.Printf("[shell] "+format, args...)
	}
}
