package main

import (
	"log"
	"os"

	"sentinel-bot/behavior"
	"sentinel-bot/bot"
	"sentinel-bot/config"
	"sentinel-bot/detector"
	"sentinel-bot/engine"
	"sentinel-bot/handlers"
	"sentinel-bot/judge"
	"sentinel-bot/ledger"
	"sentinel-bot/policy"
	"sentinel-bot/risk"
	"sentinel-bot/utils/database/trust"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	policyCfg, err := config.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		log.Fatalf("Error loading policy: %v", err)
	}

	db, err := trust.Init(cfg.DBPath)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	catalogs, err := detector.NewStore(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("Error loading detector catalogs: %v", err)
	}

	tracker, err := behavior.NewTracker(policyCfg.Behavior.CacheSize)
	if err != nil {
		log.Fatalf("Error creating behavior tracker: %v", err)
	}

	trustLedger, err := ledger.New(db, policyCfg.Trust)
	if err != nil {
		log.Fatalf("Error creating trust ledger: %v", err)
	}

	var judgeClient engine.Judge
	if cfg.JudgeEndpoint != "" {
		judgeClient = judge.NewClient(cfg.JudgeEndpoint, cfg.JudgeAPIKey, policyCfg.Judge)
	}

	eng := engine.New(
		catalogs,
		tracker,
		behavior.NewRaidDetector(policyCfg.Raid),
		risk.NewAggregator(policyCfg.Risk),
		trustLedger,
		policy.New(policyCfg.Decision),
		judgeClient,
	)

	b, err := bot.New(cfg, db, eng)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)

	b.Run()

	defer b.Close()
}
