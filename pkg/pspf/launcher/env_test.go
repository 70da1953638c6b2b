package launcher

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
)

func TestGetenvAndHasEnv(t *testing.T) {
	env := []string{"FOO=bar", "PATH=/usr/bin"}

	if got := getenv(env, "FOO", "fallback"); got != "bar" {
		t.Errorf("getenv(FOO) = %q, want bar", got)
	}
	if got := getenv(env, "MISSING", "fallback"); got != "fallback" {
		t.Errorf("getenv(MISSING) = %q, want fallback", got)
	}
	if !hasEnv(env, "FOO") {
		t.Error("hasEnv(FOO) = false, want true")
	}
	if hasEnv(env, "MISSING") {
		t.Error("hasEnv(MISSING) = true, want false")
	}
}

func TestSetEnvOverwritesExisting(t *testing.T) {
	env := []string{"FOO=old", "BAR=baz"}
	env = setEnv(env, "FOO", "new")

	if got := getenv(env, "FOO", ""); got != "new" {
		t.Errorf("setEnv did not overwrite FOO: %q", got)
	}
	if len(env) != 2 {
		t.Errorf("setEnv changed slice length when overwriting: %d", len(env))
	}
}

func TestSetEnvAppendsWhenAbsent(t *testing.T) {
	env := []string{"FOO=bar"}
	env = setEnv(env, "BAZ", "qux")

	if got := getenv(env, "BAZ", ""); got != "qux" {
		t.Errorf("setEnv did not append BAZ: %q", got)
	}
	if len(env) != 2 {
		t.Errorf("len(env) = %d, want 2", len(env))
	}
}

func TestPrependPath(t *testing.T) {
	env := []string{"PATH=/usr/bin:/bin"}
	env = prependPath(env, "/workenv/bin")

	want := "PATH=/workenv/bin:/usr/bin:/bin"
	if getenvRaw(env, "PATH") != want {
		t.Errorf("prependPath result = %q, want %q", getenvRaw(env, "PATH"), want)
	}
}

func TestPrependPathAppendsWhenNoExistingPath(t *testing.T) {
	env := []string{"FOO=bar"}
	env = prependPath(env, "/workenv/bin")

	want := "PATH=/workenv/bin"
	if getenvRaw(env, "PATH") != want {
		t.Errorf("prependPath result = %q, want %q", getenvRaw(env, "PATH"), want)
	}
}

func getenvRaw(env []string, key string) string {
	for _, e := range env {
		if len(e) > len(key) && e[:len(key)+1] == key+"=" {
			return e
		}
	}
	return ""
}

func TestIsSensitiveKey(t *testing.T) {
	if !isSensitiveKey("AWS_SECRET_ACCESS_KEY") {
		t.Error("isSensitiveKey(AWS_SECRET_ACCESS_KEY) = false, want true")
	}
	if isSensitiveKey("FLAVOR_WORKENV") {
		t.Error("isSensitiveKey(FLAVOR_WORKENV) = true, want false")
	}
}

func TestLogEnvironmentTraceRedactsSensitiveValues(t *testing.T) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Name: "test", Level: hclog.Trace, Output: &buf})

	env := []string{"GITHUB_TOKEN=supersecret", "FLAVOR_WORKENV=/cache/x"}
	logEnvironmentTrace(env, logger)

	if bytes.Contains(buf.Bytes(), []byte("supersecret")) {
		t.Error("logEnvironmentTrace leaked a sensitive value into the log output")
	}
	if !bytes.Contains(buf.Bytes(), []byte("/cache/x")) {
		t.Error("logEnvironmentTrace did not log a non-sensitive value")
	}
}
