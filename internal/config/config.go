package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/IslamTayeb/job-sheet-tracker/internal/errs"
)

type Config struct {
	IMAP struct {
		Host        string `yaml:"host"`
		Email       string `yaml:"email"`
		AppPassword string `yaml:"app_password"`
	} `yaml:"imap"`
	Google struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		RefreshToken string `yaml:"refresh_token"`
	} `yaml:"google"`
	LLM struct {
		APIBase     string  `yaml:"api_base"`
		APIKey      string  `yaml:"api_key"`
		Model       string  `yaml:"model"`
		Temperature float64 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"llm"`
	Sheet struct {
		SpreadsheetID string `yaml:"spreadsheet_id"`
		Range         string `yaml:"range"`
		CSVFile       string `yaml:"csv_file"`
	} `yaml:"sheet"`
}

// DefaultPath returns ~/.jobtrack/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".jobtrack", "config.yaml")
}

// Load reads the config file, expanding ${VAR} references against the
// environment. A local .env file is loaded first so it can supply keys.
// A missing config file is not an error; defaults and environment
// variables may still produce a usable configuration.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	b, err := os.ReadFile(path)
	if err == nil {
		content := expandEnvVars(string(b))
		if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Sheet.SpreadsheetID == "" {
		cfg.Sheet.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_ID")
	}
	if cfg.LLM.APIBase == "" {
		cfg.LLM.APIBase = "https://generativelanguage.googleapis.com/v1beta/openai"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gemini-1.5-flash"
	}
	if cfg.LLM.MaxTokens <= 0 {
		cfg.LLM.MaxTokens = 2000
	}
	if cfg.IMAP.Host == "" {
		cfg.IMAP.Host = inferIMAPHost(cfg.IMAP.Email)
	}
	if cfg.Sheet.Range == "" {
		cfg.Sheet.Range = "Sheet1"
	}
	if cfg.Sheet.SpreadsheetID == "" && cfg.Sheet.CSVFile == "" {
		cfg.Sheet.CSVFile = "applications.csv"
	}
}

// Validate checks that every collaborator the pipeline needs has a
// usable handle. Failures here abort the run before any message is
// processed.
func (cfg *Config) Validate() error {
	var problems []string

	if cfg.IMAP.Email == "" {
		problems = append(problems, "imap.email is required")
	}
	if cfg.IMAP.Host == "" {
		problems = append(problems, "imap.host could not be inferred; set it explicitly")
	}
	if cfg.IMAP.AppPassword == "" && cfg.Google.RefreshToken == "" {
		problems = append(problems, "either imap.app_password or google.refresh_token is required")
	}
	if cfg.Google.RefreshToken != "" && (cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "") {
		problems = append(problems, "google.client_id and google.client_secret are required with a refresh token")
	}
	if cfg.LLM.APIKey == "" {
		problems = append(problems, "llm.api_key is required (or set GEMINI_API_KEY)")
	}
	if cfg.Sheet.SpreadsheetID != "" && cfg.Google.RefreshToken == "" {
		problems = append(problems, "google.refresh_token is required to write to a Google Sheet")
	}

	if len(problems) > 0 {
		return errs.Configuration("invalid configuration:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// SaveAtomic validates and writes the config, keeping a .bak of the
// previous file.
func SaveAtomic(path string, cfg *Config) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}

// expandEnvVars replaces ${VAR_NAME} references with environment values.
// Unset variables are left as-is.
func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match
	})
}

// inferIMAPHost guesses the IMAP host from the mailbox address.
func inferIMAPHost(email string) string {
	email = strings.ToLower(email)

	switch {
	case strings.Contains(email, "@gmail.com"), strings.Contains(email, "@googlemail.com"):
		return "imap.gmail.com:993"
	case strings.Contains(email, "@outlook.com"), strings.Contains(email, "@hotmail.com"), strings.Contains(email, "@live.com"):
		return "outlook.office365.com:993"
	case strings.Contains(email, "@yahoo.com"):
		return "imap.mail.yahoo.com:993"
	default:
		return ""
	}
}
