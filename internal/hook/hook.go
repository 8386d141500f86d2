package hook

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"transcritor/internal/config"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
)

// Job is one transcript handed to the hook.
type Job struct {
	Text      string
	Source    string // "live" or the video file name
	File      string // transcript file the text was written to
	Timestamp time.Time
}

// Runner executes the configured hook command with a transcript payload.
type Runner struct {
	cfg      *config.Config
	logger   logrus.FieldLogger
	hostname string
}

func NewRunner(cfg *config.Config, logger logrus.FieldLogger) *Runner {
	host, _ := os.Hostname()
	return &Runner{
		cfg:      cfg,
		logger:   logger,
		hostname: host,
	}
}

// Enabled reports whether a hook command is configured.
func (r *Runner) Enabled() bool {
	return r != nil && strings.TrimSpace(r.cfg.Hook.Command) != ""
}

// Run executes the configured command with the text as last argument.
func (r *Runner) Run(ctx context.Context, job Job) error {
	name, args, err := r.command()
	if err != nil {
		return err
	}

	prefix := strings.ReplaceAll(r.cfg.Hook.Prefix, "${hostname}", r.hostname)
	text := job.Text
	if r.cfg.Hook.RedactPII {
		text = redactPII(text)
	}
	args = append(args, strings.TrimSpace(prefix+text))

	runCtx := ctx
	if r.cfg.Hook.TimeoutSec > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(float64(time.Second)*r.cfg.Hook.TimeoutSec))
		defer cancel()
	}
	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Env = os.Environ()
	for k, v := range r.cfg.Hook.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = append(cmd.Env,
		"TRANSCRITOR_TEXT="+text,
		"TRANSCRITOR_SOURCE="+job.Source,
		"TRANSCRITOR_FILE="+job.File,
		"TRANSCRITOR_TIME="+job.Timestamp.Format(time.RFC3339),
	)

	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		r.logger.Infof("hook output: %s", strings.TrimSpace(string(out)))
	}
	if err != nil {
		return fmt.Errorf("hook failed: %w", err)
	}
	return nil
}

// command resolves the executable and fixed args. A command given as one
// string with no args ("notify-send -a transcritor") is split shell-style.
func (r *Runner) command() (string, []string, error) {
	raw := strings.TrimSpace(r.cfg.Hook.Command)
	if raw == "" {
		return "", nil, fmt.Errorf("no hook.command configured")
	}
	args := append([]string{}, r.cfg.Hook.Args...)
	if len(args) > 0 || !strings.ContainsAny(raw, " \t") {
		return raw, args, nil
	}
	parts, err := ParseArgs(raw)
	if err != nil {
		return "", nil, fmt.Errorf("parse hook.command: %w", err)
	}
	if len(parts) == 0 {
		return "", nil, fmt.Errorf("hook.command %q has no executable", raw)
	}
	return parts[0], parts[1:], nil
}

// ParseArgs splits a shell-style argument string.
func ParseArgs(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	return shlex.Split(raw)
}

var (
	emailRE = regexp.MustCompile(`[\w.+-]+@[\w.-]+\.[A-Za-z]{2,}`)
	phoneRE = regexp.MustCompile(`\+?\d[\d\s\-\(\)]{6,}\d`)
)

func redactPII(s string) string {
	s = emailRE.ReplaceAllString(s, "[redacted-email]")
	s = phoneRE.ReplaceAllString(s, "[redacted-phone]")
	return s
}
