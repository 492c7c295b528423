// Package config loads mclocalizer settings.
//
// Values are layered, later layers winning:
//
//  1. built-in defaults
//  2. .mclocalizer.yaml in the working directory, or config.yaml in the
//     user data directory when the project file is absent
//  3. MCLOCALIZER_* environment variables, after loading an optional .env
//     file from the working directory
//  4. command-line flags (applied by the caller)
//
// The resulting Config is passed explicitly to the pipeline and the writer.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/mclocalizer/codec"
	"github.com/minios-linux/mclocalizer/mclocale"
	"github.com/minios-linux/mclocalizer/resourcepack"
	"github.com/minios-linux/mclocalizer/settings"
	"github.com/minios-linux/mclocalizer/snbt"
	"github.com/minios-linux/mclocalizer/translate"
)

// FileName is the project config file name.
const FileName = ".mclocalizer.yaml"

// EnvFileName is the optional dotenv file read from the working directory.
const EnvFileName = ".env"

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

// Config is the complete mclocalizer configuration.
type Config struct {
	// GameDir is the Minecraft instance directory (holds mods/, config/,
	// resourcepacks/).
	GameDir string `yaml:"game_dir,omitempty" env:"MCLOCALIZER_GAME_DIR"`
	// SourceLang is the locale to translate from (default en_us).
	SourceLang string `yaml:"source_lang,omitempty" env:"MCLOCALIZER_SOURCE_LANG"`
	// TargetLang is the locale to translate into.
	TargetLang string `yaml:"target_lang,omitempty" env:"MCLOCALIZER_TARGET_LANG"`
	// Mode selects the output layout: mods, quests, betterquesting,
	// patchouli or file.
	Mode string `yaml:"mode,omitempty" env:"MCLOCALIZER_MODE"`
	// PackName is the resource pack file name under resourcepacks/.
	PackName string `yaml:"pack_name,omitempty" env:"MCLOCALIZER_PACK_NAME"`
	// ProgressInterval throttles progress updates.
	ProgressInterval time.Duration `yaml:"progress_interval,omitempty" env:"MCLOCALIZER_PROGRESS_INTERVAL"`

	Translator Translator `yaml:"translator,omitempty"`
	Policies   Policies   `yaml:"policies,omitempty"`
}

// Translator configures the chat completion endpoint.
type Translator struct {
	Endpoint   string        `yaml:"endpoint,omitempty" env:"MCLOCALIZER_ENDPOINT"`
	Model      string        `yaml:"model,omitempty" env:"MCLOCALIZER_MODEL"`
	Provider   string        `yaml:"provider,omitempty" env:"MCLOCALIZER_PROVIDER"`
	Proxy      string        `yaml:"proxy,omitempty" env:"MCLOCALIZER_PROXY"`
	Timeout    time.Duration `yaml:"timeout,omitempty" env:"MCLOCALIZER_TIMEOUT"`
	RetryDelay time.Duration `yaml:"retry_delay,omitempty" env:"MCLOCALIZER_RETRY_DELAY"`
}

// Policies toggles the pipeline and SNBT workarounds.
type Policies struct {
	// DeselectUnmatchedChunk drops a chunk whose response had no markers.
	DeselectUnmatchedChunk *bool `yaml:"deselect_unmatched_chunk,omitempty" env:"MCLOCALIZER_DESELECT_UNMATCHED_CHUNK"`
	// MaxAttempts bounds rejected translations per entry; 0 is unlimited.
	MaxAttempts *int `yaml:"max_attempts,omitempty" env:"MCLOCALIZER_MAX_ATTEMPTS"`
	// SuppressSNBTKeys drops SNBT entries whose key contains any of these.
	SuppressSNBTKeys []string `yaml:"suppress_snbt_keys,omitempty" env:"MCLOCALIZER_SUPPRESS_SNBT_KEYS" envSeparator:","`
}

// Default returns the built-in configuration.
func Default() Config {
	deselect := translate.DefaultPolicies().DeselectUnmatchedChunk
	attempts := translate.DefaultPolicies().MaxAttempts
	return Config{
		GameDir:          ".",
		SourceLang:       mclocale.Default,
		Mode:             string(resourcepack.ModeMods),
		PackName:         resourcepack.DefaultPackName,
		ProgressInterval: translate.DefaultProgressInterval,
		Translator: Translator{
			Endpoint:   translate.DefaultEndpoint,
			Model:      translate.DefaultModel,
			Provider:   translate.DefaultProvider,
			Timeout:    120 * time.Second,
			RetryDelay: translate.DefaultRetryDelay,
		},
		Policies: Policies{
			DeselectUnmatchedChunk: &deselect,
			MaxAttempts:            &attempts,
			SuppressSNBTKeys:       snbt.DefaultPolicy().SuppressKeySubstrings,
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load builds the configuration for the project in dir. It returns the
// config and the path of the YAML file used, or "" when none was found.
func Load(dir string) (*Config, string, error) {
	cfg := Default()

	path := filepath.Join(dir, FileName)
	found, err := mergeFile(&cfg, path)
	if err != nil {
		return nil, "", err
	}
	if !found {
		path = ""
		if userPath, err := settings.ConfigFilePath(); err == nil {
			found, err = mergeFile(&cfg, userPath)
			if err != nil {
				return nil, "", err
			}
			if found {
				path = userPath
			}
		}
	}

	if err := godotenv.Load(filepath.Join(dir, EnvFileName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("reading %s: %w", EnvFileName, err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, "", fmt.Errorf("parsing environment: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		if path != "" {
			return nil, "", fmt.Errorf("%s: %w", path, err)
		}
		return nil, "", err
	}
	return &cfg, path, nil
}

// LoadFile decodes one YAML file over the defaults without environment
// overrides. Returns nil if the file does not exist.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	found, err := mergeFile(&cfg, path)
	if err != nil || !found {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// mergeFile decodes path over cfg. Unknown keys are rejected.
func mergeFile(cfg *Config, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}
	return true, nil
}

func (c *Config) normalize() {
	c.SourceLang = mclocale.Normalize(c.SourceLang)
	c.TargetLang = mclocale.Normalize(c.TargetLang)
	if c.GameDir == "" {
		c.GameDir = "."
	}
	if c.PackName == "" {
		c.PackName = resourcepack.DefaultPackName
	}
}

// Validate checks languages, mode, endpoint and policies. An empty target
// language is allowed; commands that translate require it separately.
func (c *Config) Validate() error {
	if err := mclocale.Validate(c.SourceLang); err != nil {
		return fmt.Errorf("source_lang: %w", err)
	}
	if c.TargetLang != "" {
		if err := mclocale.Validate(c.TargetLang); err != nil {
			return fmt.Errorf("target_lang: %w", err)
		}
		if c.TargetLang == c.SourceLang {
			return fmt.Errorf("target_lang %q equals source_lang", c.TargetLang)
		}
	}
	if _, err := resourcepack.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("mode: %w", err)
	}
	if u, err := url.Parse(c.Translator.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("translator.endpoint %q is not an absolute URL", c.Translator.Endpoint)
	}
	if c.Policies.MaxAttempts != nil && *c.Policies.MaxAttempts < 0 {
		return fmt.Errorf("policies.max_attempts must be >= 0, got %d", *c.Policies.MaxAttempts)
	}
	if c.ProgressInterval < 0 {
		return fmt.Errorf("progress_interval must not be negative")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Derived settings
// ---------------------------------------------------------------------------

// OutputMode returns the parsed Mode. Validate has already checked it.
func (c *Config) OutputMode() resourcepack.Mode {
	m, _ := resourcepack.ParseMode(c.Mode)
	return m
}

// PipelinePolicies returns the translate policies.
func (c *Config) PipelinePolicies() translate.Policies {
	p := translate.DefaultPolicies()
	if c.Policies.DeselectUnmatchedChunk != nil {
		p.DeselectUnmatchedChunk = *c.Policies.DeselectUnmatchedChunk
	}
	if c.Policies.MaxAttempts != nil {
		p.MaxAttempts = *c.Policies.MaxAttempts
	}
	return p
}

// CodecOptions returns the encoder options.
func (c *Config) CodecOptions() codec.Options {
	opts := codec.DefaultOptions()
	opts.SNBT = snbt.Policy{SuppressKeySubstrings: c.Policies.SuppressSNBTKeys}
	return opts
}
