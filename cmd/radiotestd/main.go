package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/radiotest/internal/config"
	"github.com/danmuck/radiotest/internal/logging"
	"github.com/danmuck/radiotest/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to radiotest TOML config")
	flag.Parse()

	logging.ConfigureRuntime()

	cfg := config.DefaultServiceConfig()
	if path := strings.TrimSpace(*configPath); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "radiotestd: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	svc, err := service.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "radiotestd: %v\n", err)
		os.Exit(1)
	}
	if err := svc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "radiotestd: %v\n", err)
		os.Exit(1)
	}
}
