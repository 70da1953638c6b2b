package launcher

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// getenv retrieves a variable from an []string-style environment list,
// ported from the teacher's execution_env.go.
func getenv(env []string, key, fallback string) string {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return strings.TrimPrefix(e, prefix)
		}
	}
	return fallback
}

func hasEnv(env []string, key string) bool {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return true
		}
	}
	return false
}

func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

func prependPath(env []string, dir string) []string {
	for i, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			env[i] = fmt.Sprintf("PATH=%s:%s", dir, strings.TrimPrefix(e, "PATH="))
			return env
		}
	}
	return append(env, fmt.Sprintf("PATH=%s", dir))
}

var sensitiveEnvKeys = map[string]bool{
	"SSH_AUTH_SOCK":         true,
	"AWS_SECRET_ACCESS_KEY": true,
	"GITHUB_TOKEN":          true,
	"HF_TOKEN":              true,
	"OPENAI_API_KEY":        true,
	"PASSWORD":              true,
}

func isSensitiveKey(key string) bool {
	return sensitiveEnvKeys[key]
}

func logEnvironmentTrace(env []string, logger hclog.Logger) {
	if !logger.IsTrace() {
		return
	}
	logger.Trace("🌍 environment passed to payload")
	for _, e := range env {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) != 2 {
			continue
		}
		value := parts[1]
		if isSensitiveKey(parts[0]) {
			value = "***"
		}
		logger.Trace("  env", "key", parts[0], "value", value)
	}
}
