package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bitia-ru/anypod/pkg/config"
	"github.com/bitia-ru/anypod/pkg/shell"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
	utilexec "k8s.io/utils/exec"
	testingexec "k8s.io/utils/exec/testing"
)

func newFakeClient() *fake.Clientset {
	return fake.NewSimpleClientset(
		&appsv1.Deployment{ObjectMeta: metav1.ObjectMeta{Name: "web-api", Namespace: "default"}},
		&appsv1.StatefulSet{ObjectMeta: metav1.ObjectMeta{Name: "postgres", Namespace: "default"}},
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: "web-api-7f9c", Namespace: "default"},
			Status: corev1.PodStatus{
				Phase:      corev1.PodRunning,
				Conditions: []corev1.PodCondition{{Type: corev1.PodReady, Status: corev1.ConditionTrue}},
			},
		},
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: "web-api-2k1x", Namespace: "default"},
			Status:     corev1.PodStatus{Phase: corev1.PodPending},
		},
	)
}

// noExec fails the test if a command is started.
func noExec(t *testing.T) *shell.Launcher {
	t.Helper()
	fexec := &testingexec.FakeExec{
		LookPathFunc: func(file string) (string, error) {
			t.Errorf("unexpected LookPath(%q)", file)
			return "", errors.New("unexpected")
		},
	}
	return shell.New(fexec, "kubectl", false)
}

func defaultOptions() options {
	opts := options{noColor: true}
	applyConfig(&opts, config.DefaultConfig())
	return opts
}

func TestRun_PrintsPodName(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), newFakeClient(), "default", "web", defaultOptions(), noExec(t), shell.Streams{Out: &out})
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if out.String() != "web-api-7f9c\n" {
		t.Errorf("output = %q, want %q", out.String(), "web-api-7f9c\n")
	}
}

func TestRun_NoMatchListsWorkloads(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), newFakeClient(), "default", "daemonset/web", defaultOptions(), noExec(t), shell.Streams{Out: &out})
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"No matching pods found in namespace 'default'!",
		"Here are the workloads that exist in this namespace.",
		"Deployments:\n  web-api\n",
		"StatefulSets:\n  postgres\n",
		"Did you mean:\n  deployment/web-api\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "DaemonSets:") {
		t.Errorf("output lists empty DaemonSets group:\n%s", got)
	}
}

func TestRun_ExecOpensShell(t *testing.T) {
	fcmd := &testingexec.FakeCmd{
		RunScript: []testingexec.FakeAction{
			func() ([]byte, []byte, error) { return nil, nil, nil },
		},
	}
	fexec := &testingexec.FakeExec{
		CommandScript: []testingexec.FakeCommandAction{
			func(cmd string, args ...string) utilexec.Cmd { return testingexec.InitFakeCmd(fcmd, cmd, args...) },
		},
		LookPathFunc: func(file string) (string, error) { return "/usr/bin/" + file, nil },
	}
	opts := defaultOptions()
	opts.exec = true

	var out bytes.Buffer
	err := run(context.Background(), newFakeClient(), "default", "deployment/web", opts, shell.New(fexec, opts.kubectl, false), shell.Streams{Out: &out})
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}

	argv := strings.Join(fcmd.Argv, " ")
	if argv != "/usr/bin/kubectl -n default exec -it web-api-7f9c -- /bin/bash" {
		t.Errorf("Argv = %q", argv)
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want nothing printed with --exec", out.String())
	}
}

func TestRun_ExecUsesResolvingCluster(t *testing.T) {
	fcmd := &testingexec.FakeCmd{
		RunScript: []testingexec.FakeAction{
			func() ([]byte, []byte, error) { return nil, nil, nil },
		},
	}
	fexec := &testingexec.FakeExec{
		CommandScript: []testingexec.FakeCommandAction{
			func(cmd string, args ...string) utilexec.Cmd { return testingexec.InitFakeCmd(fcmd, cmd, args...) },
		},
		LookPathFunc: func(file string) (string, error) { return "/usr/bin/" + file, nil },
	}
	opts := defaultOptions()
	opts.exec = true
	opts.context = "staging"
	opts.kubeconfig = "/tmp/staging-kubeconfig"

	err := run(context.Background(), newFakeClient(), "default", "web", opts, shell.New(fexec, opts.kubectl, false), shell.Streams{Out: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}

	argv := strings.Join(fcmd.Argv, " ")
	want := "/usr/bin/kubectl --kubeconfig /tmp/staging-kubeconfig --context staging -n default exec -it web-api-7f9c -- /bin/bash"
	if argv != want {
		t.Errorf("Argv = %q, want %q", argv, want)
	}
}

func TestRun_ExecLaunchFailureIsReported(t *testing.T) {
	fexec := &testingexec.FakeExec{
		LookPathFunc: func(string) (string, error) { return "", errors.New("executable file not found in $PATH") },
	}
	opts := defaultOptions()
	opts.exec = true

	var out bytes.Buffer
	err := run(context.Background(), newFakeClient(), "default", "web", opts, shell.New(fexec, opts.kubectl, false), shell.Streams{Out: &out})
	if err != nil {
		t.Fatalf("run() error = %v, want nil after a failed launch", err)
	}
	if !strings.HasPrefix(out.String(), "Failed to execute kubectl:") {
		t.Errorf("output = %q, want launch failure message", out.String())
	}
}

func TestRun_ExecWithoutMatchListsWorkloads(t *testing.T) {
	opts := defaultOptions()
	opts.exec = true

	var out bytes.Buffer
	err := run(context.Background(), newFakeClient(), "default", "nothing", opts, noExec(t), shell.Streams{Out: &out})
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if !strings.Contains(out.String(), "No matching pods found") {
		t.Errorf("output = %q, want no-match message", out.String())
	}
}

func TestRun_StrictReturnsListingError(t *testing.T) {
	client := newFakeClient()
	client.PrependReactor("list", "deployments", func(action k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("forbidden")
	})
	opts := defaultOptions()
	opts.strict = true

	var out bytes.Buffer
	err := run(context.Background(), client, "default", "web", opts, noExec(t), shell.Streams{Out: &out})
	if err == nil {
		t.Fatal("expected error in strict mode")
	}
	if !strings.Contains(err.Error(), "forbidden") {
		t.Errorf("error = %q, want the listing failure", err.Error())
	}
}

func TestRun_StrictReturnsEnumerationError(t *testing.T) {
	client := newFakeClient()
	client.PrependReactor("list", "daemonsets", func(action k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("forbidden")
	})
	opts := defaultOptions()
	opts.strict = true

	var out bytes.Buffer
	err := run(context.Background(), client, "default", "statefulset/cache", opts, noExec(t), shell.Streams{Out: &out})
	if err == nil {
		t.Fatalf("run() succeeded with output %q, want the daemonset listing error", out.String())
	}
	if !strings.Contains(err.Error(), "forbidden") {
		t.Errorf("error = %q, want the listing failure", err.Error())
	}
	if strings.Contains(out.String(), "No matching pods found") {
		t.Errorf("partial listing printed:\n%s", out.String())
	}
}

func TestRun_ListingErrorAbsorbedByDefault(t *testing.T) {
	client := newFakeClient()
	client.PrependReactor("list", "deployments", func(action k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("forbidden")
	})

	var out bytes.Buffer
	err := run(context.Background(), client, "default", "web", defaultOptions(), noExec(t), shell.Streams{Out: &out})
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if !strings.Contains(out.String(), "No matching pods found") {
		t.Errorf("output = %q, want no-match message", out.String())
	}
}

func TestApplyConfig(t *testing.T) {
	cfg := &config.AppConfig{
		Exec:    config.ExecConfig{Shell: "/bin/zsh", Kubectl: "oc"},
		Cluster: config.ClusterConfig{RequestTimeout: 10 * time.Second},
	}

	t.Run("fills unset options", func(t *testing.T) {
		var opts options
		applyConfig(&opts, cfg)
		if opts.shell != "/bin/zsh" || opts.kubectl != "oc" || opts.timeout != 10*time.Second {
			t.Errorf("options = %+v", opts)
		}
	})

	t.Run("flags win", func(t *testing.T) {
		opts := options{shell: "/bin/sh", timeout: time.Minute}
		applyConfig(&opts, cfg)
		if opts.shell != "/bin/sh" {
			t.Errorf("shell = %q, want /bin/sh", opts.shell)
		}
		if opts.timeout != time.Minute {
			t.Errorf("timeout = %v, want 1m", opts.timeout)
		}
	})
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("exec:\n  shell: /bin/ash\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Exec.Shell != "/bin/ash" {
		t.Errorf("Exec.Shell = %q, want /bin/ash", cfg.Exec.Shell)
	}
}
