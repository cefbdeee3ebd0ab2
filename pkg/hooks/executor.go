package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/vanderheijden86/catalogview/pkg/debug"
)

// maxOutput caps the captured stdout/stderr shown in summaries.
const maxOutput = 500

// HookResult records one hook run.
type HookResult struct {
	Hook     Hook
	Phase    HookPhase
	Success  bool
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// Executor runs the hooks of a Config for one export.
type Executor struct {
	config  *Config
	context ExportContext
	results []HookResult
}

// NewExecutor creates an executor for config.
func NewExecutor(config *Config, ctx ExportContext) *Executor {
	if config == nil {
		config = &Config{}
	}
	return &Executor{config: config, context: ctx}
}

// SetContext replaces the export context, e.g. with the written paths
// before post-export hooks run.
func (e *Executor) SetContext(ctx ExportContext) {
	e.context = ctx
}

// RunPreExport runs pre-export hooks in order and stops at the first
// failure whose policy is "fail".
func (e *Executor) RunPreExport() error {
	for _, hook := range e.config.Hooks.PreExport {
		res := e.run(hook, PreExport)
		if !res.Success && hook.OnError != OnErrorContinue {
			return fmt.Errorf("pre-export hook %q failed: %w", hook.Name, res.Error)
		}
	}
	return nil
}

// RunPostExport runs every post-export hook. Failures with policy "fail"
// are joined into the returned error.
func (e *Executor) RunPostExport() error {
	var errs []error
	for _, hook := range e.config.Hooks.PostExport {
		res := e.run(hook, PostExport)
		if !res.Success && hook.OnError == OnErrorFail {
			errs = append(errs, fmt.Errorf("post-export hook %q failed: %w", hook.Name, res.Error))
		}
	}
	return errors.Join(errs...)
}

func (e *Executor) run(hook Hook, phase HookPhase) HookResult {
	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := shellCommand(ctx, hook.Command)
	cmd.Env = append(os.Environ(), e.context.ToEnv()...)
	for k, v := range hook.Env {
		cmd.Env = append(cmd.Env, k+"="+os.ExpandEnv(v))
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Do not wait on pipes held open by orphaned children after a kill.
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	res := HookResult{
		Hook:     hook,
		Phase:    phase,
		Success:  err == nil,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
		Error:    err,
	}
	if ctx.Err() == context.DeadlineExceeded {
		res.Success = false
		res.Error = fmt.Errorf("timed out after %v", timeout)
	}
	debug.Log("hooks: %s %q took %v (ok=%v)", phase, hook.Name, res.Duration, res.Success)
	e.results = append(e.results, res)
	return res
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

// Results returns the runs so far, in order.
func (e *Executor) Results() []HookResult {
	return e.results
}

// Summary is a human-readable report of the runs.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return "No hooks executed"
	}
	var b strings.Builder
	ok := 0
	for _, r := range e.results {
		if r.Success {
			ok++
		}
	}
	fmt.Fprintf(&b, "Hooks: %d/%d succeeded\n", ok, len(e.results))
	for _, r := range e.results {
		status := "ok"
		if !r.Success {
			status = "FAILED"
		}
		fmt.Fprintf(&b, "  [%s] %s (%s, %v)\n", r.Phase, r.Hook.Name, status, r.Duration.Round(time.Millisecond))
		if !r.Success {
			if r.Error != nil {
				fmt.Fprintf(&b, "    error: %v\n", r.Error)
			}
			if r.Stderr != "" {
				fmt.Fprintf(&b, "    stderr: %s\n", truncate(r.Stderr, maxOutput))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RunHooks loads the hooks of projectDir. It returns nil without error when
// noHooks is set or no hooks are configured.
func RunHooks(projectDir string, ctx ExportContext, noHooks bool) (*Executor, error) {
	if noHooks {
		return nil, nil
	}
	loader := NewLoader(WithProjectDir(projectDir))
	if err := loader.Load(); err != nil {
		return nil, err
	}
	for _, w := range loader.Warnings() {
		debug.Log("hooks: %s", w)
	}
	if !loader.HasHooks() {
		return nil, nil
	}
	return NewExecutor(loader.Config(), ctx), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
