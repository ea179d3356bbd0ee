//go:build !js && !wasm

// This file wraps invocations of the gh CLI used to talk to the GitHub API.
// All network access goes through gh so that authentication, enterprise
// hosts, and proxies are handled exactly as the user's gh configuration
// dictates.

package cli

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/cli/go-gh/v2"

	"github.com/sammayer/ci-log-processor/pkg/console"
	"github.com/sammayer/ci-log-processor/pkg/logger"
)

var githubLog = logger.New("cli:github")

// setupGHCommand creates an exec.Cmd for gh CLI with proper token
// configuration. When ctx is nil, it uses exec.Command; when ctx is
// provided, it uses exec.CommandContext.
func setupGHCommand(ctx context.Context, args ...string) *exec.Cmd {
	ghToken := os.Getenv("GH_TOKEN")
	githubToken := os.Getenv("GITHUB_TOKEN")

	var cmd *exec.Cmd
	if ctx != nil {
		cmd = exec.CommandContext(ctx, "gh", args...)
	} else {
		cmd = exec.Command("gh", args...)
	}
	githubLog.Printf("Executing gh CLI command: gh %v", args)

	// Only add GH_TOKEN if it's not set but GITHUB_TOKEN is available.
	if ghToken == "" && githubToken != "" {
		githubLog.Printf("GH_TOKEN not set, using GITHUB_TOKEN for gh CLI")
		cmd.Env = append(os.Environ(), "GH_TOKEN="+githubToken)
	}

	return cmd
}

// ExecGH wraps gh CLI calls and ensures proper token configuration.
//
// Usage:
//
//	cmd := ExecGH("api", "/user")
//	output, err := cmd.Output()
func ExecGH(args ...string) *exec.Cmd {
	//nolint:staticcheck // Passing nil context to use exec.Command instead of exec.CommandContext
	return setupGHCommand(nil, args...)
}

// ExecGHContext wraps gh CLI calls with context support for cancellation and
// timeouts.
func ExecGHContext(ctx context.Context, args ...string) *exec.Cmd {
	return setupGHCommand(ctx, args...)
}

// ExecGHWithOutput executes a gh CLI command via go-gh/v2 and returns stdout,
// stderr, and error. go-gh resolves the gh binary and inherits the user's
// authentication configuration.
func ExecGHWithOutput(args ...string) (stdout, stderr bytes.Buffer, err error) {
	githubLog.Printf("Executing gh CLI command via go-gh/v2: gh %v", args)
	return gh.Exec(args...)
}

// RunGH executes a gh CLI command with a spinner and returns the stdout
// output. The spinner is shown in interactive terminals to provide feedback
// during network operations.
func RunGH(spinnerMessage string, args ...string) ([]byte, error) {
	cmd := ExecGH(args...)

	if console.IsStderrTerminal() {
		spinner := console.NewSpinner(spinnerMessage)
		spinner.Start()
		output, err := cmd.Output()
		spinner.Stop()
		return output, err
	}

	return cmd.Output()
}
