package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"sentinel-bot/model"
)

// Load reads the runtime configuration from environment variables.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, channel logging will be disabled")
	}

	alertChannelID := os.Getenv("ALERT_CHANNEL_ID")
	if alertChannelID == "" {
		alertChannelID = logChannelID
	}

	judgeEndpoint := os.Getenv("JUDGE_ENDPOINT")
	if judgeEndpoint == "" {
		log.Println("Info: JUDGE_ENDPOINT not set, external judgment is disabled")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/trust.db"
	}

	policyPath := os.Getenv("POLICY_PATH")
	if policyPath == "" {
		policyPath = "data/policy.yaml"
	}

	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = "data/catalogs.yaml"
	}

	return &model.Config{
		BotToken:         token,
		AppID:            appID,
		LogChannelID:     logChannelID,
		AlertChannelID:   alertChannelID,
		LogWebhookURL:    os.Getenv("LOG_WEBHOOK_URL"),
		JudgeEndpoint:    judgeEndpoint,
		JudgeAPIKey:      os.Getenv("JUDGE_API_KEY"),
		DBPath:           dbPath,
		PolicyPath:       policyPath,
		CatalogPath:      catalogPath,
		AdminRoleIDs:     splitList(os.Getenv("ADMIN_ROLE_IDS")),
		DeveloperUserIDs: splitList(os.Getenv("DEVELOPER_USER_IDS")),
	}, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// DefaultPolicy returns the built-in policy constants. The policy file
// overrides individual keys; anything absent keeps its default.
func DefaultPolicy() *model.PolicyConfig {
	return &model.PolicyConfig{
		Risk: model.RiskConfig{
			Thresholds: []model.ThresholdRule{
				{Score: 0.9, Level: string(model.ThreatCritical), Action: model.ActionImmediateBan},
				{Score: 0.8, Level: string(model.ThreatHigh), Action: model.ActionTimeoutAndAlert},
				{Score: 0.7, Level: string(model.ThreatHigh), Action: model.ActionDeleteAndWarn},
				{Score: 0.5, Level: string(model.ThreatMedium), Action: model.ActionMonitorClosely},
				{Score: 0.3, Level: string(model.ThreatLow), Action: model.ActionLogActivity},
				{Score: 0, Level: string(model.ThreatSafe), Action: model.ActionNone},
			},
			BlockThreshold: 0.7,
			AlertThreshold: 0.8,
			BlendWeight:    0.4,
		},
		Raid: model.RaidConfig{
			JoinThreshold:   10,
			WindowSecs:      60,
			WindowCap:       50,
			BurstThreshold:  15,
			BurstWindowSecs: 10,
			BurstCap:        30,
		},
		Behavior: model.BehaviorConfig{CacheSize: 4096},
		Judge: model.JudgeConfig{
			TimeoutSecs:  15,
			MaxRetries:   3,
			CacheSize:    1024,
			CacheTTLMins: 60,
		},
		Decision: model.DecisionConfig{
			TimeoutMinutes:      60,
			EscalationThreshold: 3,
		},
		Trust: model.TrustConfig{
			ViolationPenalty: 5,
			InactiveDays:     30,
			CacheSize:        4096,
		},
	}
}

// LoadPolicy reads the policy file at path over the defaults. A missing
// file is not an error; a malformed one is.
func LoadPolicy(path string) (*model.PolicyConfig, error) {
	cfg := DefaultPolicy()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file") {
			log.Printf("Policy file %s not found, using built-in defaults", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read policy file %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}
	return cfg, nil
}
