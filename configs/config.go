package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
		TurnTimeout  time.Duration `koanf:"turn_timeout"`
	} `koanf:"http"`

	Redis struct {
		Addr        string        `koanf:"addr"`
		Password    string        `koanf:"password"`
		SessionTTL  time.Duration `koanf:"session_ttl"`
		TurnLockTTL time.Duration `koanf:"turn_lock_ttl"`
	} `koanf:"redis"`

	LLM struct {
		Endpoint    string        `koanf:"endpoint"`
		APIKey      string        `koanf:"api_key"`
		Model       string        `koanf:"model"`
		MaxTokens   int64         `koanf:"max_tokens"`
		Temperature float64       `koanf:"temperature"`
		Timeout     time.Duration `koanf:"timeout"`
	} `koanf:"llm"`

	Menu struct {
		BaseURL    string        `koanf:"base_url"`
		CacheTTL   time.Duration `koanf:"cache_ttl"`
		SummaryCap int           `koanf:"summary_cap"`
	} `koanf:"menu"`

	Pricing struct {
		TaxRate  float64 `koanf:"tax_rate"`
		Currency string  `koanf:"currency"`
	} `koanf:"pricing"`

	Fulfillment struct {
		BaseURL           string        `koanf:"base_url"`
		Timeout           time.Duration `koanf:"timeout"`
		MaxRetries        int           `koanf:"max_retries"`
		InitialDelay      time.Duration `koanf:"initial_delay"`
		BackoffMultiplier float64       `koanf:"backoff_multiplier"`
	} `koanf:"fulfillment"`

	Rabbit struct {
		URL        string `koanf:"url"`
		Exchange   string `koanf:"exchange"`
		RoutingKey string `koanf:"routing_key"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers     []string `koanf:"brokers"`
		GroupID     string   `koanf:"group_id"`
		StatusTopic string   `koanf:"status_topic"`
	} `koanf:"kafka"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix VOICEORDER_, nested with __)
	// e.g. VOICEORDER_LLM__API_KEY, VOICEORDER_REDIS__PASSWORD
	if err := k.Load(env.Provider("VOICEORDER_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "VOICEORDER_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.Menu.BaseURL == "" {
		return fmt.Errorf("menu.base_url required")
	}
	if c.Fulfillment.BaseURL == "" {
		return fmt.Errorf("fulfillment.base_url required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model required")
	}
	if c.Pricing.TaxRate < 0 || c.Pricing.TaxRate >= 1 {
		return fmt.Errorf("pricing.tax_rate must be in [0, 1)")
	}
	if c.Fulfillment.BackoffMultiplier < 1 {
		return fmt.Errorf("fulfillment.backoff_multiplier must be >= 1")
	}
	return nil
}
