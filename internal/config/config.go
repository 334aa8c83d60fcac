package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingCredential is wrapped by a ValidationError when a required
// credential is absent.
var ErrMissingCredential = errors.New("missing credential")

// Config represents the docimpact configuration.
type Config struct {
	Provider           string        `json:"provider"`
	Model              string        `json:"model"`
	MaxTokens          int           `json:"maxTokens"`
	Temperature        float64       `json:"temperature"`
	Format             string        `json:"format"`
	OutputDir          string        `json:"outputDir,omitempty"`
	RateLimitPerMinute int           `json:"rateLimitPerMinute"`
	MaxChangeSets      int           `json:"maxChangeSets"`
	LookbackDays       int           `json:"lookbackDays"`
	MaxDiffChars       int           `json:"maxDiffChars"`
	ExtraInstructions  string        `json:"extraInstructions,omitempty"`
	PolicyFile         string        `json:"policyFile,omitempty"`
	GitHub             GitHubConfig  `json:"github"`
	Cache              CacheConfig   `json:"cache"`
	Privacy            PrivacyConfig `json:"privacy"`
}

// GitHubConfig holds hosting platform settings. The token is never
// persisted to the config file.
type GitHubConfig struct {
	APIURL string `json:"apiURL,omitempty"`
	Token  string `json:"-"`
}

// CacheConfig controls the classifier response cache.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig controls privacy/redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool     `json:"redactSecrets"`
	RedactPaths   []string `json:"redactPaths,omitempty"`
}

// DefaultGitHubAPIURL is the public GitHub REST endpoint.
const DefaultGitHubAPIURL = "https://api.github.com"

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:           "openai",
		Model:              "gpt-4-turbo",
		MaxTokens:          2000,
		Temperature:        0.7,
		Format:             "markdown",
		RateLimitPerMinute: 20,
		MaxChangeSets:      100,
		LookbackDays:       30,
		MaxDiffChars:       10000,
		GitHub: GitHubConfig{
			APIURL: DefaultGitHubAPIURL,
		},
		Cache: CacheConfig{
			Enabled:    false,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for docimpact.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "docimpact"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "docimpact"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "docimpact"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "docimpact"), nil
	default:
		return filepath.Join(home, ".config", "docimpact"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// DotEnvFile is the file read by LoadDotEnv when no path is given.
const DotEnvFile = ".env"

// LoadDotEnv populates the process environment from a dotenv file.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = DotEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load builds the effective config by merging: defaults <- file <- .env/env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)

	if err := LoadDotEnv(""); err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.MaxTokens > 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.Temperature > 0 {
		dst.Temperature = src.Temperature
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.OutputDir != "" {
		dst.OutputDir = src.OutputDir
	}
	if src.RateLimitPerMinute > 0 {
		dst.RateLimitPerMinute = src.RateLimitPerMinute
	}
	if src.MaxChangeSets > 0 {
		dst.MaxChangeSets = src.MaxChangeSets
	}
	if src.LookbackDays > 0 {
		dst.LookbackDays = src.LookbackDays
	}
	if src.MaxDiffChars > 0 {
		dst.MaxDiffChars = src.MaxDiffChars
	}
	if src.ExtraInstructions != "" {
		dst.ExtraInstructions = src.ExtraInstructions
	}
	if src.PolicyFile != "" {
		dst.PolicyFile = src.PolicyFile
	}
	if src.GitHub.APIURL != "" {
		dst.GitHub.APIURL = src.GitHub.APIURL
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	// A zero bool cannot be told apart from an unset one, so the file can
	// only switch the cache on.
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
	if len(src.Privacy.RedactPaths) > 0 {
		dst.Privacy.RedactPaths = src.Privacy.RedactPaths
	}
}

// firstEnv returns the value of the first non-empty variable in keys.
func firstEnv(keys ...string) (string, string) {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return k, v
		}
	}
	return "", ""
}

func mergeEnv(cfg *Config) error {
	if v := os.Getenv("DOCIMPACT_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if _, v := firstEnv("DOCIMPACT_MODEL", "OPENAI_MODEL"); v != "" {
		cfg.Model = v
	}
	if k, v := firstEnv("DOCIMPACT_MAX_TOKENS", "OPENAI_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", k, err)
		}
		cfg.MaxTokens = n
	}
	if k, v := firstEnv("DOCIMPACT_TEMPERATURE", "OPENAI_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", k, err)
		}
		cfg.Temperature = f
	}
	if v := os.Getenv("DOCIMPACT_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("DOCIMPACT_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("DOCIMPACT_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DOCIMPACT_RATE_LIMIT must be an integer: %w", err)
		}
		cfg.RateLimitPerMinute = n
	}
	if v := os.Getenv("DOCIMPACT_EXTRA_INSTRUCTIONS"); v != "" {
		cfg.ExtraInstructions = v
	}
	if v := os.Getenv("DOCIMPACT_POLICY_FILE"); v != "" {
		cfg.PolicyFile = v
	}
	if v := os.Getenv("GITHUB_API_URL"); v != "" {
		cfg.GitHub.APIURL = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := SetField(cfg, key, value); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "maxTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxTokens must be an integer: %w", err)
		}
		cfg.MaxTokens = n
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = f
	case "format":
		cfg.Format = value
	case "outputDir":
		cfg.OutputDir = value
	case "rateLimitPerMinute":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("rateLimitPerMinute must be an integer: %w", err)
		}
		cfg.RateLimitPerMinute = n
	case "maxChangeSets":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxChangeSets must be an integer: %w", err)
		}
		cfg.MaxChangeSets = n
	case "lookbackDays":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("lookbackDays must be an integer: %w", err)
		}
		cfg.LookbackDays = n
	case "maxDiffChars":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxDiffChars must be an integer: %w", err)
		}
		cfg.MaxDiffChars = n
	case "extraInstructions":
		cfg.ExtraInstructions = value
	case "policyFile":
		cfg.PolicyFile = value
	case "github.apiURL":
		cfg.GitHub.APIURL = value
	case "github.token":
		cfg.GitHub.Token = value
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = b
	case "cache.dir":
		cfg.Cache.Dir = value
	case "privacy.redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("privacy.redactSecrets must be a boolean: %w", err)
		}
		cfg.Privacy.RedactSecrets = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// ValidationError lists every problem found by Validate.
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual problems to errors.Is.
func (e *ValidationError) Unwrap() []error {
	return e.Problems
}

// Validate checks the merged config before any network call is made.
func Validate(cfg Config) error {
	var problems []error
	if cfg.GitHub.Token == "" {
		problems = append(problems, fmt.Errorf("%w: GITHUB_TOKEN is not set", ErrMissingCredential))
	}
	if cfg.Provider == "" {
		problems = append(problems, errors.New("provider must not be empty"))
	}
	if cfg.MaxTokens <= 0 {
		problems = append(problems, fmt.Errorf("maxTokens must be positive, got %d", cfg.MaxTokens))
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		problems = append(problems, fmt.Errorf("temperature must be between 0 and 2, got %g", cfg.Temperature))
	}
	if cfg.RateLimitPerMinute < 0 {
		problems = append(problems, fmt.Errorf("rateLimitPerMinute must not be negative, got %d", cfg.RateLimitPerMinute))
	}
	if cfg.MaxChangeSets <= 0 {
		problems = append(problems, fmt.Errorf("maxChangeSets must be positive, got %d", cfg.MaxChangeSets))
	}
	if cfg.LookbackDays <= 0 {
		problems = append(problems, fmt.Errorf("lookbackDays must be positive, got %d", cfg.LookbackDays))
	}
	if cfg.MaxDiffChars <= 0 {
		problems = append(problems, fmt.Errorf("maxDiffChars must be positive, got %d", cfg.MaxDiffChars))
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
