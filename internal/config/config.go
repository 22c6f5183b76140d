// Package config resolves run settings from defaults, an optional YAML file,
// the environment (with .env support) and command-line overrides, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingSecrets = errors.New("config: missing required settings")
	ErrInvalid        = errors.New("config: invalid value")
)

type Config struct {
	// Secrets come from the environment only.
	FigmaAPIKey  string `yaml:"-"`
	GeminiAPIKey string `yaml:"-"`

	Figma    FigmaConfig    `yaml:"figma"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Output   OutputConfig   `yaml:"output"`
	Log      LogConfig      `yaml:"log"`
	Artifact ArtifactConfig `yaml:"artifact"`
}

type FigmaConfig struct {
	FileKey   string        `yaml:"file_key"`
	PageName  string        `yaml:"page_name"`
	FrameName string        `yaml:"frame_name"`
	APIBase   string        `yaml:"api_base"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxDepth  int           `yaml:"max_depth"`
}

type GeminiConfig struct {
	Model        string        `yaml:"model"`
	PlanAttempts int           `yaml:"plan_attempts"`
	PlanBackoff  time.Duration `yaml:"plan_backoff"`
	SchemaDelay  time.Duration `yaml:"schema_delay"`
}

type OutputConfig struct {
	SchemasDir   string `yaml:"schemas_dir"`
	Mode         string `yaml:"mode"`
	StudioConfig string `yaml:"studio_config"`
}

type LogConfig struct {
	Dir       string `yaml:"dir"`
	Verbose   bool   `yaml:"verbose"`
	PromptDir string `yaml:"prompt_dir"`
}

type ArtifactConfig struct {
	Backend    string   `yaml:"backend"`
	PGDSN      string   `yaml:"pg_dsn"`
	SQLitePath string   `yaml:"sqlite_path"`
	S3         S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Figma: FigmaConfig{
			PageName:  "Page 1",
			FrameName: "Desktop",
			APIBase:   "https://api.figma.com",
			Timeout:   60 * time.Second,
			MaxDepth:  7,
		},
		Gemini: GeminiConfig{
			Model:        "gemini-2.5-flash",
			PlanAttempts: 3,
			PlanBackoff:  2 * time.Second,
			SchemaDelay:  1200 * time.Millisecond,
		},
		Output: OutputConfig{
			SchemasDir:   "schemaTypes",
			Mode:         "code",
			StudioConfig: "sanity.config.ts",
		},
		Log: LogConfig{Dir: "logs"},
		Artifact: ArtifactConfig{
			Backend:    "none",
			SQLitePath: "schemagen.db",
			S3:         S3Config{Region: "us-east-1", Bucket: "schemagen-artifacts", UseSSL: true},
		},
	}
}

// Load reads .env into the process environment, then resolves path (may be
// empty) and the environment over the defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(path, os.Getenv)
}

// LoadFrom is Load with an explicit environment lookup.
func LoadFrom(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }
	str := func(dst *string, key string) {
		if v := env(key); v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(dst *int, key string) {
		if v := env(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalid, key, v))
				return
			}
			*dst = n
		}
	}
	dur := func(dst *time.Duration, key string) {
		if v := env(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d < 0 {
				errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalid, key, v))
				return
			}
			*dst = d
		}
	}
	flag := func(dst *bool, key string) {
		if v := env(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalid, key, v))
				return
			}
			*dst = b
		}
	}

	str(&c.FigmaAPIKey, "FIGMA_API_KEY")
	str(&c.GeminiAPIKey, "GEMINI_API_KEY")
	str(&c.Figma.FileKey, "FIGMA_FILE_KEY")
	str(&c.Figma.PageName, "FIGMA_PAGE_NAME")
	str(&c.Figma.FrameName, "FIGMA_FRAME_NAME")
	str(&c.Figma.APIBase, "FIGMA_API_BASE")
	dur(&c.Figma.Timeout, "FIGMA_TIMEOUT")
	num(&c.Figma.MaxDepth, "FIGMA_MAX_DEPTH")
	str(&c.Gemini.Model, "GEMINI_MODEL")
	num(&c.Gemini.PlanAttempts, "PLAN_ATTEMPTS")
	dur(&c.Gemini.PlanBackoff, "PLAN_BACKOFF")
	dur(&c.Gemini.SchemaDelay, "SCHEMA_DELAY")
	str(&c.Output.SchemasDir, "SCHEMAS_DIR")
	str(&c.Output.Mode, "SCHEMAGEN_MODE")
	str(&c.Output.StudioConfig, "SANITY_CONFIG_PATH")
	str(&c.Log.Dir, "LOG_DIR")
	flag(&c.Log.Verbose, "SCHEMAGEN_VERBOSE")
	str(&c.Log.PromptDir, "PROMPT_DUMP_DIR")
	str(&c.Artifact.Backend, "ARTIFACT_STORE")
	str(&c.Artifact.PGDSN, "ARTIFACT_PG_DSN")
	str(&c.Artifact.SQLitePath, "ARTIFACT_SQLITE_PATH")
	str(&c.Artifact.S3.Endpoint, "ARTIFACT_S3_ENDPOINT")
	str(&c.Artifact.S3.Region, "ARTIFACT_S3_REGION")
	c.Artifact.S3.AccessKey = firstNonEmpty(env("ARTIFACT_S3_ACCESS_KEY"), env("MINIO_ROOT_USER"), c.Artifact.S3.AccessKey)
	c.Artifact.S3.SecretKey = firstNonEmpty(env("ARTIFACT_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD"), c.Artifact.S3.SecretKey)
	str(&c.Artifact.S3.Bucket, "ARTIFACT_S3_BUCKET")
	flag(&c.Artifact.S3.UseSSL, "ARTIFACT_S3_USE_SSL")
	return errors.Join(errs...)
}

// Overrides carries command-line values; empty fields leave the config as is.
type Overrides struct {
	OutDir    string
	Mode      string
	Model     string
	Page      string
	Frame     string
	PromptDir string
	Verbose   bool
}

// Apply layers o over c.
func (c *Config) Apply(o Overrides) {
	c.Output.SchemasDir = firstNonEmpty(o.OutDir, c.Output.SchemasDir)
	c.Output.Mode = firstNonEmpty(o.Mode, c.Output.Mode)
	c.Gemini.Model = firstNonEmpty(o.Model, c.Gemini.Model)
	c.Figma.PageName = firstNonEmpty(o.Page, c.Figma.PageName)
	c.Figma.FrameName = firstNonEmpty(o.Frame, c.Figma.FrameName)
	c.Log.PromptDir = firstNonEmpty(o.PromptDir, c.Log.PromptDir)
	c.Log.Verbose = c.Log.Verbose || o.Verbose
}

// Validate reports every missing secret at once, before any network call.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.FigmaAPIKey) == "" {
		missing = append(missing, "FIGMA_API_KEY")
	}
	if strings.TrimSpace(c.Figma.FileKey) == "" {
		missing = append(missing, "FIGMA_FILE_KEY")
	}
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSecrets, strings.Join(missing, ", "))
	}
	switch strings.ToLower(c.Output.Mode) {
	case "code", "fields":
	default:
		return fmt.Errorf("%w: mode %q", ErrInvalid, c.Output.Mode)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
