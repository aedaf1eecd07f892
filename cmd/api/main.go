package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	apivaluation "valueinvest/pkg/api/valuation"
	"valueinvest/pkg/core/config"
	"valueinvest/pkg/core/store"
	"valueinvest/pkg/core/valuation"
)

// ServerConfig is read from config/server.yaml.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	Persist     bool   `yaml:"persist"`
	Assumptions string `yaml:"assumptions"` // path to an Hjson assumptions file
}

func main() {
	godotenv.Load()

	cfg := ServerConfig{Addr: ":8080"}
	if data, err := os.ReadFile("config/server.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("parse config/server.yaml: %v", err)
		}
	} else {
		fmt.Println("[API] no config/server.yaml, using defaults")
	}

	if cfg.Persist {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := store.InitDB(ctx); err != nil {
			cancel()
			log.Fatalf("init database: %v", err)
		}
		cancel()
		defer store.Close()
		fmt.Println("[API] report persistence enabled")
	}

	assumptions := config.Defaults()
	if cfg.Assumptions != "" {
		var err error
		assumptions, err = config.Load(cfg.Assumptions)
		if err != nil {
			log.Fatalf("load assumptions: %v", err)
		}
		fmt.Printf("[API] assumptions loaded from %s\n", cfg.Assumptions)
	}

	apivaluation.InitHandler(valuation.NewEngineWithParams(assumptions.EngineParams()), cfg.Persist)
	http.HandleFunc("/api/valuation/report", apivaluation.HandleValuationReport)
	http.HandleFunc("/api/valuation/get", apivaluation.HandleGetReport)

	fmt.Printf("[API] listening on %s\n", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, nil); err != nil {
		log.Fatal(err)
	}
}
