package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"transcritor/internal/config"
	"transcritor/internal/media"
)

// Result represents a diagnostic check.
type Result struct {
	Name   string
	Pass   bool
	Detail string
}

// Run executes doctor checks.
func Run(ctx context.Context, cfg *config.Config) []Result {
	results := []Result{
		checkFile("config path", cfg.Paths.ConfigPath),
		checkFFmpeg(ctx, cfg),
		checkAPIKey(cfg),
	}
	if cfg.ASR.Backend == "whisper" {
		results = append(results, checkFile("model file", cfg.ASR.ModelPath))
	}
	if strings.TrimSpace(cfg.Hook.Command) != "" {
		results = append(results, checkHookExecutable(cfg.Hook.Command))
	}
	results = append(results, checkPortAudioPkgConfig())
	results = append(results, checkLoopback(cfg))
	for _, dir := range []string{cfg.Paths.TranscriptDir, cfg.Paths.AudioDir} {
		results = append(results, checkWritableDir(dir))
	}
	return results
}

func checkFile(label, path string) Result {
	if path == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	if _, err := os.Stat(os.ExpandEnv(path)); err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: path}
}

func checkFFmpeg(ctx context.Context, cfg *config.Config) Result {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	x := media.Extractor{FFmpegPath: cfg.Video.FFmpegPath}
	v, err := x.Version(ctx)
	if err != nil {
		return Result{Name: "ffmpeg", Pass: false, Detail: err.Error()}
	}
	return Result{Name: "ffmpeg", Pass: true, Detail: v}
}

func checkAPIKey(cfg *config.Config) Result {
	label := "api key"
	switch cfg.ASR.Backend {
	case "openai":
		if cfg.ASR.APIKey == "" {
			return Result{Name: label, Pass: false, Detail: "OPENAI_API_KEY not set (environment or .env)"}
		}
	case "gemini":
		if cfg.ASR.APIKey == "" {
			return Result{Name: label, Pass: false, Detail: "GEMINI_API_KEY not set (environment or .env)"}
		}
	default:
		return Result{Name: label, Pass: true, Detail: "not needed for " + cfg.ASR.Backend}
	}
	return Result{Name: label, Pass: true, Detail: cfg.ASR.Backend + " key " + mask(cfg.ASR.APIKey)}
}

func mask(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func checkHookExecutable(cmd string) Result {
	label := "hook.command"
	path := os.ExpandEnv(strings.TrimSpace(cmd))
	if fields := strings.Fields(path); len(fields) > 1 {
		path = fields[0]
	}
	// If contains a path separator, treat as explicit path.
	if strings.Contains(path, "/") || strings.Contains(path, "\\") {
		info, err := os.Stat(path)
		if err != nil {
			return Result{Name: label, Pass: false, Detail: err.Error()}
		}
		if info.IsDir() {
			return Result{Name: label, Pass: false, Detail: "is a directory; set hook.command to an executable file"}
		}
		if info.Mode().Perm()&0o111 == 0 {
			return Result{Name: label, Pass: false, Detail: "not executable; chmod +x or choose another command"}
		}
		return Result{Name: label, Pass: true, Detail: path}
	}
	// Else search PATH.
	resolved, err := exec.LookPath(path)
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: resolved}
}

func checkPortAudioPkgConfig() Result {
	pkg, err := exec.LookPath("pkg-config")
	if err != nil {
		return Result{Name: "pkg-config", Pass: false, Detail: "pkg-config not found"}
	}
	cmd := exec.Command(pkg, "--exists", "portaudio-2.0")
	if err := cmd.Run(); err != nil {
		return Result{Name: "portaudio", Pass: false, Detail: "portaudio-2.0 not found (install the PortAudio development package)"}
	}
	versionCmd := exec.Command(pkg, "--modversion", "portaudio-2.0")
	if out, err := versionCmd.Output(); err == nil {
		return Result{Name: "portaudio", Pass: true, Detail: strings.TrimSpace(string(out))}
	}
	return Result{Name: "portaudio", Pass: true, Detail: "found via pkg-config"}
}

// checkWritableDir creates dir if needed and probes it with a temp file.
func checkWritableDir(dir string) Result {
	label := "dir " + dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return Result{Name: label, Pass: false, Detail: fmt.Sprintf("not writable: %v", err)}
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return Result{Name: label, Pass: true, Detail: "writable"}
}
