package main

import (
	"flag"
	"fmt"
	"os"

	"transcritor/internal/config"

	"github.com/pelletier/go-toml/v2"
)

func main() {
	path := flag.String("c", "", "config path")
	flag.Parse()
	cfg, err := config.Load(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("# %s\n# backend=%s api_key_set=%v live=%s\n", cfg.Paths.ConfigPath, cfg.ASR.Backend, cfg.ASR.APIKey != "", cfg.LiveTranscriptPath())
	out, err := toml.Marshal(cfg)
	if err != nil {
		panic(err)
	}
	os.Stdout.Write(out)
}
