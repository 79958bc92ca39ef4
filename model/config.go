package model

// Config holds the runtime configuration loaded from the environment.
type Config struct {
	BotToken         string
	AppID            string
	LogChannelID     string
	AlertChannelID   string
	LogWebhookURL    string
	JudgeEndpoint    string
	JudgeAPIKey      string
	DBPath           string
	PolicyPath       string
	CatalogPath      string
	AdminRoleIDs     []string
	DeveloperUserIDs []string
}

// PolicyConfig holds the tunable policy constants loaded from
// data/policy.yaml. Every value has a hardcoded default so the file is
// optional.
type PolicyConfig struct {
	Risk     RiskConfig     `mapstructure:"risk"`
	Raid     RaidConfig     `mapstructure:"raid"`
	Behavior BehaviorConfig `mapstructure:"behavior"`
	Judge    JudgeConfig    `mapstructure:"judge"`
	Decision DecisionConfig `mapstructure:"decision"`
	Trust    TrustConfig    `mapstructure:"trust"`
}

// ThresholdRule maps an inclusive lower score bound to a threat level and
// a recommended action. Rules are evaluated highest bound first.
type ThresholdRule struct {
	Score  float64 `mapstructure:"score"`
	Level  string  `mapstructure:"level"`
	Action string  `mapstructure:"action"`
}

type RiskConfig struct {
	Thresholds     []ThresholdRule `mapstructure:"thresholds"`
	BlockThreshold float64         `mapstructure:"block_threshold"`
	AlertThreshold float64         `mapstructure:"alert_threshold"`
	BlendWeight    float64         `mapstructure:"blend_weight"`
}

type RaidConfig struct {
	JoinThreshold   int `mapstructure:"join_threshold"`
	WindowSecs      int `mapstructure:"window_secs"`
	WindowCap       int `mapstructure:"window_cap"`
	BurstThreshold  int `mapstructure:"burst_threshold"`
	BurstWindowSecs int `mapstructure:"burst_window_secs"`
	BurstCap        int `mapstructure:"burst_cap"`
}

type BehaviorConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

type JudgeConfig struct {
	TimeoutSecs  int `mapstructure:"timeout_secs"`
	MaxRetries   int `mapstructure:"max_retries"`
	CacheSize    int `mapstructure:"cache_size"`
	CacheTTLMins int `mapstructure:"cache_ttl_mins"`
}

type DecisionConfig struct {
	TimeoutMinutes      int `mapstructure:"timeout_minutes"`
	EscalationThreshold int `mapstructure:"escalation_threshold"`
}

type TrustConfig struct {
	ViolationPenalty float64 `mapstructure:"violation_penalty"`
	InactiveDays     int     `mapstructure:"inactive_days"`
	CacheSize        int     `mapstructure:"cache_size"`
}
