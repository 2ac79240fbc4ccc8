package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Browser    BrowserConfig
	Extraction ExtractionConfig
	Competitor CompetitorConfig
	Scoring    ScoringConfig
	Currency   CurrencyConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type BrowserConfig struct {
	Headless           bool
	NavigationTimeout  time.Duration
	SettleTime         time.Duration
	HumanDelayMin      time.Duration
	HumanDelayMax      time.Duration
	MinViewportWidth   int
	MaxViewportWidth   int
	MinViewportHeight  int
	MaxViewportHeight  int
	MaxContexts        int
	UserAgents         []string
	ChallengeSelectors []string
}

type ExtractionConfig struct {
	FetchTimeout      time.Duration
	StopThreshold     int
	EscalateThreshold int
}

type CompetitorConfig struct {
	MaxCompetitors   int
	MinUsableQuality int
	DelayMin         time.Duration
	DelayMax         time.Duration
}

type ScoringConfig struct {
	ScaleOpportunityMin  int
	ScaleRiskCeiling     int
	TestOpportunityFloor int
	TestRiskCeiling      int
}

type CurrencyConfig struct {
	// Rates maps currency code to base-currency value per unit. Nil selects
	// the built-in table.
	Rates map[string]float64
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 60*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Browser: BrowserConfig{
			Headless:           getBoolOrDefault("BROWSER_HEADLESS", true),
			NavigationTimeout:  getDurationOrDefault("BROWSER_NAVIGATION_TIMEOUT", 45*time.Second),
			SettleTime:         getDurationOrDefault("BROWSER_SETTLE_TIME", 3*time.Second),
			HumanDelayMin:      getDurationOrDefault("BROWSER_HUMAN_DELAY_MIN", 500*time.Millisecond),
			HumanDelayMax:      getDurationOrDefault("BROWSER_HUMAN_DELAY_MAX", 2*time.Second),
			MinViewportWidth:   getIntOrDefault("BROWSER_MIN_VIEWPORT_WIDTH", 1280),
			MaxViewportWidth:   getIntOrDefault("BROWSER_MAX_VIEWPORT_WIDTH", 1920),
			MinViewportHeight:  getIntOrDefault("BROWSER_MIN_VIEWPORT_HEIGHT", 720),
			MaxViewportHeight:  getIntOrDefault("BROWSER_MAX_VIEWPORT_HEIGHT", 1080),
			MaxContexts:        getIntOrDefault("BROWSER_MAX_CONTEXTS", 3),
			UserAgents:         getStringSliceOrDefault("BROWSER_USER_AGENTS", defaultUserAgents()),
			ChallengeSelectors: getStringSliceOrDefault("BROWSER_CHALLENGE_SELECTORS", defaultChallengeSelectors()),
		},
		Extraction: ExtractionConfig{
			FetchTimeout:      getDurationOrDefault("EXTRACTION_FETCH_TIMEOUT", 15*time.Second),
			StopThreshold:     getIntOrDefault("EXTRACTION_STOP_THRESHOLD", 70),
			EscalateThreshold: getIntOrDefault("EXTRACTION_ESCALATE_THRESHOLD", 75),
		},
		Competitor: CompetitorConfig{
			MaxCompetitors:   getIntOrDefault("COMPETITOR_MAX", 2),
			MinUsableQuality: getIntOrDefault("COMPETITOR_MIN_QUALITY", 40),
			DelayMin:         getDurationOrDefault("COMPETITOR_DELAY_MIN", 2*time.Second),
			DelayMax:         getDurationOrDefault("COMPETITOR_DELAY_MAX", 6*time.Second),
		},
		Scoring: ScoringConfig{
			ScaleOpportunityMin:  getIntOrDefault("SCORING_SCALE_OPPORTUNITY_MIN", 60),
			ScaleRiskCeiling:     getIntOrDefault("SCORING_SCALE_RISK_CEILING", 50),
			TestOpportunityFloor: getIntOrDefault("SCORING_TEST_OPPORTUNITY_FLOOR", 35),
			TestRiskCeiling:      getIntOrDefault("SCORING_TEST_RISK_CEILING", 70),
		},
		Currency: CurrencyConfig{
			Rates: getRatesOrDefault("CURRENCY_RATES"),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "dropradar"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		},
		Cache: CacheConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
			TTL:      getDurationOrDefault("CACHE_TTL", 6*time.Hour),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Browser.MaxContexts < 1 {
		return fmt.Errorf("BROWSER_MAX_CONTEXTS must be at least 1")
	}
	if len(c.Browser.UserAgents) < 3 {
		return fmt.Errorf("BROWSER_USER_AGENTS needs at least 3 entries for rotation")
	}
	if c.Browser.HumanDelayMin > c.Browser.HumanDelayMax {
		return fmt.Errorf("BROWSER_HUMAN_DELAY_MIN cannot exceed BROWSER_HUMAN_DELAY_MAX")
	}
	if c.Extraction.StopThreshold < 0 || c.Extraction.StopThreshold > 100 {
		return fmt.Errorf("EXTRACTION_STOP_THRESHOLD must be within 0-100")
	}
	if c.Extraction.EscalateThreshold < 0 || c.Extraction.EscalateThreshold > 100 {
		return fmt.Errorf("EXTRACTION_ESCALATE_THRESHOLD must be within 0-100")
	}
	if c.Competitor.MaxCompetitors < 0 {
		return fmt.Errorf("COMPETITOR_MAX cannot be negative")
	}
	if c.Competitor.DelayMin > c.Competitor.DelayMax {
		return fmt.Errorf("COMPETITOR_DELAY_MIN cannot exceed COMPETITOR_DELAY_MAX")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// getRatesOrDefault parses "EUR=1.08,GBP=1.27" style overrides.
func getRatesOrDefault(key string) map[string]float64 {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	rates := make(map[string]float64)
	for _, pair := range strings.Split(value, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		if rate, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err == nil && rate > 0 {
			rates[strings.ToUpper(strings.TrimSpace(parts[0]))] = rate
		}
	}
	if len(rates) == 0 {
		return nil
	}
	return rates
}

func defaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
	}
}

func defaultChallengeSelectors() []string {
	return []string{
		"#captchacharacters",
		"form[action*='Captcha']",
		"iframe[src*='captcha']",
		"iframe[title*='challenge']",
		"#challenge-form",
		"#cf-challenge-running",
		".g-recaptcha",
		"#px-captcha",
	}
}
