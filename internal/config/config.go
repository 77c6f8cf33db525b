// Package config holds the tracker's configuration: YAML file with
// defaults, environment overrides on top, explicit struct passed into
// components.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all conftrack configuration.
type Config struct {
	// LLM extraction backend
	LLM LLMConfig `yaml:"llm"`

	// Page fetching
	Fetch FetchConfig `yaml:"fetch"`

	// Database and change log locations
	Store StoreConfig `yaml:"store"`

	// Website publishing via git
	Website WebsiteConfig `yaml:"website"`

	// Email notifications
	Email EmailConfig `yaml:"email"`

	// Report and calendar output
	Output OutputConfig `yaml:"output"`
}

// LLMConfig configures the extraction backend.
type LLMConfig struct {
	Provider string `yaml:"provider"` // ollama, gemini, heuristic
	Endpoint string `yaml:"endpoint"` // ollama only
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"` // gemini only
	Timeout  string `yaml:"timeout"`
}

// FetchConfig configures page retrieval.
type FetchConfig struct {
	Timeout       string `yaml:"timeout"`
	SubpageLimit  int    `yaml:"subpage_limit"`
	Rendered      bool   `yaml:"rendered"` // headless-browser fallback
	RenderTimeout string `yaml:"render_timeout"`
}

// StoreConfig locates the database and its change log.
type StoreConfig struct {
	DatabasePath  string `yaml:"database_path"`
	ChangeLogPath string `yaml:"change_log_path"`
}

// WebsiteConfig configures publishing into a website git checkout.
type WebsiteConfig struct {
	RepoPath     string `yaml:"repo_path"`
	DatabasePath string `yaml:"database_path"` // path inside the repo
	Token        string `yaml:"token"`         // https remotes only
}

// EmailConfig configures SMTP notifications.
type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	From       string `yaml:"from"`
	Password   string `yaml:"password"`
	To         string `yaml:"to"`
}

// OutputConfig locates generated artifacts.
type OutputConfig struct {
	ReportPath   string `yaml:"report_path"`
	CalendarPath string `yaml:"calendar_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "ollama",
			Endpoint: "http://localhost:11434",
			Model:    "llama3.2",
			Timeout:  "120s",
		},
		Fetch: FetchConfig{
			Timeout:       "15s",
			SubpageLimit:  4,
			RenderTimeout: "30s",
		},
		Store: StoreConfig{
			DatabasePath:  "conference_database.json",
			ChangeLogPath: "deadline_changes.log",
		},
		Website: WebsiteConfig{
			DatabasePath: "assets/conference_database.json",
		},
		Email: EmailConfig{
			SMTPServer: "smtp.gmail.com",
			SMTPPort:   587,
		},
		Output: OutputConfig{
			ReportPath:   "conference_deadlines.html",
			CalendarPath: "conference_deadlines.ics",
		},
	}
}

// Load loads configuration from a YAML file, layering a .env file and
// environment variables on top. A missing config file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
		// The ollama default model makes no sense for gemini; an empty
		// model lets the backend pick its own default.
		if c.LLM.Model == DefaultConfig().LLM.Model {
			c.LLM.Model = ""
		}
	}
	if endpoint := os.Getenv("OLLAMA_ENDPOINT"); endpoint != "" {
		c.LLM.Endpoint = endpoint
	}
	if model := os.Getenv("OLLAMA_MODEL"); model != "" && c.LLM.Provider == "ollama" {
		c.LLM.Model = model
	}

	if from := os.Getenv("EMAIL_FROM"); from != "" {
		c.Email.From = from
	}
	if password := os.Getenv("EMAIL_PASSWORD"); password != "" {
		c.Email.Password = password
	}
	if to := os.Getenv("EMAIL_TO"); to != "" {
		c.Email.To = to
	}
	if port := os.Getenv("EMAIL_SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Email.SMTPPort = p
		}
	}

	if path := os.Getenv("CONFTRACK_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if repo := os.Getenv("CONFTRACK_WEBSITE_REPO"); repo != "" {
		c.Website.RepoPath = repo
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		c.Website.Token = token
	}
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetFetchTimeout returns the page fetch timeout as a duration.
func (c *Config) GetFetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Fetch.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// GetRenderTimeout returns the headless-browser timeout as a duration.
func (c *Config) GetRenderTimeout() time.Duration {
	d, err := time.ParseDuration(c.Fetch.RenderTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ValidProviders lists all supported extraction backends.
var ValidProviders = []string{"ollama", "gemini", "heuristic"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validProvider := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}
	if c.LLM.Provider == "gemini" && c.LLM.APIKey == "" {
		return fmt.Errorf("gemini provider needs an API key (set GEMINI_API_KEY)")
	}
	if c.Store.DatabasePath == "" {
		return fmt.Errorf("database path not configured")
	}
	return nil
}
