package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	defaultStateDir  = ".local/state/transcritor"
	defaultConfigDir = ".config/transcritor"

	// DefaultLiveTranscript is the file name used by the live pipeline.
	DefaultLiveTranscript = "transcricao_reuniao.txt"
)

// Config holds user configuration loaded from TOML.
type Config struct {
	Audio struct {
		DeviceName      string   `toml:"device_name"`
		LoopbackNames   []string `toml:"loopback_names" validate:"dive,required"`
		LoopbackHostAPI []string `toml:"loopback_host_apis" validate:"dive,required"`
		SampleRate      int      `toml:"sample_rate" validate:"gt=0"`
		Channels        int      `toml:"channels" validate:"gte=0"` // 0 = device maximum
		WindowSec       float64  `toml:"window_sec" validate:"gt=0"`
		TempDir         string   `toml:"temp_dir"`
	} `toml:"audio"`

	Video struct {
		ChunkSec   float64  `toml:"chunk_sec" validate:"gt=0"`
		Extensions []string `toml:"extensions" validate:"min=1,dive,startswith=."`
		FFmpegPath string   `toml:"ffmpeg_path" validate:"required"`
		SampleRate int      `toml:"sample_rate" validate:"gt=0"`
		KeepAudio  bool     `toml:"keep_audio"`
	} `toml:"video"`

	ASR struct {
		Backend    string  `toml:"backend" validate:"oneof=openai gemini whisper"`
		Language   string  `toml:"language" validate:"required"`
		Model      string  `toml:"model"`
		BaseURL    string  `toml:"base_url"`
		ModelPath  string  `toml:"model_path"` // whisper backend only
		TimeoutSec float64 `toml:"timeout_sec" validate:"gte=0"`
		APIKey     string  `toml:"-"`
	} `toml:"asr"`

	VAD struct {
		Enabled        bool    `toml:"enabled"`
		Aggressiveness int     `toml:"aggressiveness" validate:"gte=0,lte=3"`
		MinSpeechRatio float64 `toml:"min_speech_ratio" validate:"gte=0,lte=1"`
	} `toml:"vad"`

	Hook struct {
		Command    string            `toml:"command"`
		Args       []string          `toml:"args"`
		Prefix     string            `toml:"prefix"`
		TimeoutSec float64           `toml:"timeout_sec" validate:"gte=0"`
		Env        map[string]string `toml:"env"`
		RedactPII  bool              `toml:"redact_pii"`
	} `toml:"hook"`

	Logging struct {
		Level  string `toml:"level"`                                // debug, info, warn, error
		Format string `toml:"format" validate:"oneof=text json"` // text, json
		Stdout bool   `toml:"stdout"`
	} `toml:"logging"`

	Paths struct {
		StateDir       string `toml:"state_dir"`
		LogPath        string `toml:"log_path"`
		TranscriptDir  string `toml:"transcript_dir" validate:"required"`
		VideoDir       string `toml:"video_dir" validate:"required"`
		AudioDir       string `toml:"audio_dir" validate:"required"`
		LiveTranscript string `toml:"live_transcript" validate:"required"`
		ModelDir       string `toml:"model_dir"`
		ConfigPath     string `toml:"-"`
	} `toml:"paths"`

	Metrics struct {
		Enabled bool   `toml:"enabled"`
		Addr    string `toml:"addr"`
	} `toml:"metrics"`
}

// Default returns Config populated with defaults.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	stateDir := filepath.Join(home, defaultStateDir)

	cfg := &Config{}

	cfg.Audio.LoopbackNames = []string{"stereo mix", "mixagem estéreo"}
	cfg.Audio.LoopbackHostAPI = []string{"wasapi"}
	cfg.Audio.SampleRate = 44100
	cfg.Audio.Channels = 0
	cfg.Audio.WindowSec = 10

	cfg.Video.ChunkSec = 60
	cfg.Video.Extensions = []string{".mp4", ".avi", ".mkv"}
	cfg.Video.FFmpegPath = "ffmpeg"
	cfg.Video.SampleRate = 16000
	cfg.Video.KeepAudio = true

	cfg.ASR.Backend = "openai"
	cfg.ASR.Language = "pt-BR"
	cfg.ASR.ModelPath = filepath.Join(stateDir, "models", "ggml-medium-q5_1.bin")
	cfg.ASR.TimeoutSec = 120

	cfg.VAD.Enabled = false
	cfg.VAD.Aggressiveness = 2
	cfg.VAD.MinSpeechRatio = 0.02

	cfg.Hook.Args = []string{}
	cfg.Hook.TimeoutSec = 5
	cfg.Hook.Env = map[string]string{}

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	cfg.Logging.Stdout = true

	cfg.Paths.StateDir = stateDir
	cfg.Paths.LogPath = filepath.Join(stateDir, "transcritor.log")
	cfg.Paths.TranscriptDir = "transcrição"
	cfg.Paths.VideoDir = "video_transcrição"
	cfg.Paths.AudioDir = "audio_extraído"
	cfg.Paths.LiveTranscript = DefaultLiveTranscript
	cfg.Paths.ModelDir = filepath.Join(stateDir, "models")

	cfg.Metrics.Enabled = false
	cfg.Metrics.Addr = "127.0.0.1:9318"

	return cfg, nil
}

// Load loads config from file, applying defaults. A missing file is created
// from the defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, defaultConfigDir, "config.toml")
	}

	// API keys usually live in ./.env next to the media folders.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := Save(cfg, path); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.Paths.ConfigPath = path
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

// MustStatePaths ensures state dirs exist.
func MustStatePaths(cfg *Config) error {
	for _, p := range []string{cfg.Paths.StateDir, filepath.Dir(cfg.Paths.LogPath)} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// EnsureDirs creates the transcript, video and extracted-audio folders.
func EnsureDirs(cfg *Config) error {
	for _, p := range []string{cfg.Paths.TranscriptDir, cfg.Paths.VideoDir, cfg.Paths.AudioDir} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", p, err)
		}
	}
	return nil
}

// LiveTranscriptPath is where the live pipeline appends its lines.
func (c *Config) LiveTranscriptPath() string {
	return filepath.Join(c.Paths.TranscriptDir, c.Paths.LiveTranscript)
}

// Window is the live capture cadence.
func (c *Config) Window() time.Duration {
	return seconds(c.Audio.WindowSec)
}

// Chunk is the batch segmentation window.
func (c *Config) Chunk() time.Duration {
	return seconds(c.Video.ChunkSec)
}

// RequestTimeout bounds a single recognition call; zero means no limit.
func (c *Config) RequestTimeout() time.Duration {
	return seconds(c.ASR.TimeoutSec)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRANSCRITOR_BACKEND"); v != "" {
		cfg.ASR.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("TRANSCRITOR_LANGUAGE"); v != "" {
		cfg.ASR.Language = v
	}
	if v := os.Getenv("TRANSCRITOR_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
		cfg.Metrics.Enabled = true
	}
	if v := os.Getenv("TRANSCRITOR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRANSCRITOR_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("TRANSCRITOR_VAD_ENABLED"); v != "" {
		cfg.VAD.Enabled = v != "0" && strings.ToLower(v) != "false"
	}
	cfg.ASR.APIKey = apiKeyFor(cfg.ASR.Backend)
}

func apiKeyFor(backend string) string {
	switch backend {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "gemini":
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			return v
		}
		return os.Getenv("GOOGLE_API_KEY")
	}
	return ""
}

// RefreshAPIKey re-resolves the API key after the backend was changed by a flag.
func RefreshAPIKey(cfg *Config) {
	cfg.ASR.APIKey = apiKeyFor(cfg.ASR.Backend)
}
