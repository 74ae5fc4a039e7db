// Package doctor runs runtime readiness diagnostics for config, tools, audio, and the service.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rbright/voxlate/internal/audio"
	"github.com/rbright/voxlate/internal/config"
	"github.com/rbright/voxlate/internal/output"
	"github.com/rbright/voxlate/internal/version"
)

const probeTimeout = 2 * time.Second

// Check is one doctor assertion result. Advisory checks never fail the report.
type Check struct {
	Name     string
	Pass     bool
	Advisory bool
	Message  string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all non-advisory checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass && !check.Advisory {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		switch {
		case !check.Pass && check.Advisory:
			status = "WARN"
		case !check.Pass:
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{}

	configMsg := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		configMsg = fmt.Sprintf("%q not found; using defaults", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: configMsg})

	runtimeDir := checkEnv("XDG_RUNTIME_DIR", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "session socket uses XDG_RUNTIME_DIR", "XDG_RUNTIME_DIR is empty; falling back to the temp dir")
	runtimeDir.Advisory = true
	checks = append(checks, runtimeDir)

	checks = append(checks, checkClipboard(cfg.Config.Clipboard))
	checks = append(checks, checkAudioSelection(ctx, cfg.Config))
	checks = append(checks, checkServiceReady(ctx, cfg.Config.Service))
	if strings.TrimSpace(cfg.Config.Service.GRPCHealth) != "" {
		checks = append(checks, checkGRPCHealth(ctx, cfg.Config.Service.GRPCHealth))
	}

	return Report{Checks: checks}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkClipboard validates the configured clipboard command or the system fallback.
func checkClipboard(cmd config.CommandConfig) Check {
	if len(cmd.Argv) > 0 {
		return checkCommand(cmd.Argv, "clipboard_cmd")
	}
	clip := output.NewClipboard(cmd, nil)
	if err := clip.Available(); err != nil {
		return Check{Name: "clipboard", Pass: false, Advisory: true, Message: err.Error()}
	}
	return Check{Name: "clipboard", Pass: true, Message: clip.Describe()}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.Config) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkServiceReady probes the service health path over HTTP.
func checkServiceReady(ctx context.Context, svc config.ServiceConfig) Check {
	base := strings.TrimRight(strings.TrimSpace(svc.URL), "/")
	if base == "" {
		return Check{Name: "service.ready", Pass: false, Message: "service.url is empty"}
	}
	url := base + svc.HealthPath

	resp, err := resty.New().
		SetTimeout(probeTimeout).
		SetHeader("User-Agent", version.UserAgent()).
		R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return Check{Name: "service.ready", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	if !resp.IsSuccess() {
		return Check{Name: "service.ready", Pass: false, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode(), url)}
	}
	return Check{Name: "service.ready", Pass: true, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode(), url)}
}
