package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
)

// Engine holds the chat relay configuration.
type Engine struct {
	APIKey  string `envconfig:"OPENAI_API_KEY" required:"true"`
	BaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	Model   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	Port    int    `envconfig:"PORT" default:"8000"`

	// Path to config.toml file
	ConfigFile string `envconfig:"CONFIG_FILE" default:"config.toml"`

	Prompts Prompts `ignored:"true"`
}

// Bot holds the polling bot configuration.
type Bot struct {
	Token string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`

	ConfigFile string `envconfig:"CONFIG_FILE" default:"config.toml"`

	Prompts Prompts `ignored:"true"`
}

// Webhook holds the webhook bot configuration.
type Webhook struct {
	Token      string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	WebhookURL string `envconfig:"WEBHOOK_URL" required:"true"` // e.g. https://example.com
	Port       int    `envconfig:"PORT" default:"5000"`
	Workers    int    `envconfig:"WEBHOOK_WORKERS" default:"1"`
	QueueSize  int    `envconfig:"WEBHOOK_QUEUE_SIZE" default:"100"`

	ConfigFile string `envconfig:"CONFIG_FILE" default:"config.toml"`

	Prompts Prompts `ignored:"true"`
}

// CallbackURL is the URL Telegram delivers updates to.
func (c *Webhook) CallbackURL() string {
	return strings.TrimRight(c.WebhookURL, "/") + "/webhook"
}

// Validate rejects required values that are set but empty.
func (c *Engine) Validate() error {
	return requireNonEmpty(map[string]string{"OPENAI_API_KEY": c.APIKey})
}

func (c *Bot) Validate() error {
	return requireNonEmpty(map[string]string{"TELEGRAM_BOT_TOKEN": c.Token})
}

func (c *Webhook) Validate() error {
	return requireNonEmpty(map[string]string{
		"TELEGRAM_BOT_TOKEN": c.Token,
		"WEBHOOK_URL":        c.WebhookURL,
	})
}

func requireNonEmpty(vars map[string]string) error {
	var missing []string
	for key, val := range vars {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("required key %s missing value", strings.Join(missing, ", "))
}

// Prompts holds the fixed texts, optionally overridden by config.toml.
type Prompts struct {
	System string `toml:"system"`
	Start  string `toml:"start"`
	Help   string `toml:"help"`
}

// FileConfig represents the structure of config.toml.
type FileConfig struct {
	Prompts Prompts `toml:"prompts"`
}

// DefaultPrompts provides fallback texts if config.toml is not found.
var DefaultPrompts = Prompts{
	System: "You are TravelAi, an AI travel assistant.",
	Start:  "👋 Hello! I’m your TravelAi Telegram bot.\nType /help to see what I can do.",
	Help:   "/start - Start the bot\n/help - Show this help message\nJust send me any text and I’ll echo it back!",
}

// LoadEnv loads the configuration from environment variables.
func LoadEnv[T any]() (*T, error) {
	var cfg T
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadPrompts reads the [prompts] table from path. A missing file yields
// DefaultPrompts; empty entries fall back to their default.
func LoadPrompts(path string) (Prompts, error) {
	configPath := path
	if !filepath.IsAbs(configPath) {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			// Try executable directory
			execPath, err := os.Executable()
			if err == nil {
				configPath = filepath.Join(filepath.Dir(execPath), path)
			}
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultPrompts, nil
	}

	var fileConfig FileConfig
	if _, err := toml.DecodeFile(configPath, &fileConfig); err != nil {
		return Prompts{}, err
	}

	p := fileConfig.Prompts
	if p.System == "" {
		p.System = DefaultPrompts.System
	}
	if p.Start == "" {
		p.Start = DefaultPrompts.Start
	}
	if p.Help == "" {
		p.Help = DefaultPrompts.Help
	}

	return p, nil
}

func NewEngine() (*Engine, error) {
	cfg, err := LoadEnv[Engine]()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Prompts, err = LoadPrompts(cfg.ConfigFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func NewBot() (*Bot, error) {
	cfg, err := LoadEnv[Bot]()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Prompts, err = LoadPrompts(cfg.ConfigFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func NewWebhook() (*Webhook, error) {
	cfg, err := LoadEnv[Webhook]()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Prompts, err = LoadPrompts(cfg.ConfigFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func EngineModule() fx.Option {
	return fx.Module(
		"config",
		fx.Provide(
			NewEngine,
		),
	)
}

func BotModule() fx.Option {
	return fx.Module(
		"config",
		fx.Provide(
			NewBot,
		),
	)
}

func WebhookModule() fx.Option {
	return fx.Module(
		"config",
		fx.Provide(
			NewWebhook,
		),
	)
}
