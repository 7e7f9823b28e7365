package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig loads configuration for a service into cfg. A missing config
// file is not an error; defaults are applied by the caller afterwards.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	files := ResolveFiles(serviceName, lc)
	return loadFromResolvedFiles(serviceName, cfg, files, lc.FileSystem)
}

// ResolveFiles returns explicit paths if provided, otherwise searches the
// standard locations.
func ResolveFiles(serviceName string, lc LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{ConfigFile: lc.ConfigFile, EnvFile: lc.EnvFile}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = firstExisting(lc.FileSystem, []string{
			fmt.Sprintf("./cmd/%s/config.yml", serviceName),
			"./config/config.yml",
			"./config.yml",
		})
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = firstExisting(lc.FileSystem, []string{
			fmt.Sprintf("./cmd/%s/.env", serviceName),
			fmt.Sprintf(".env.%s", serviceName),
			".env",
		})
	}
	return resolved
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

func loadFromResolvedFiles(serviceName string, cfg interface{}, files ResolvedFiles, fs FileSystem) error {
	v := viper.New()

	if files.ConfigFile != "" && fs.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", files.ConfigFile, err)
		}
	}

	// .env values must be in the process environment before binding.
	if files.EnvFile != "" && fs.Exists(files.EnvFile) {
		if err := fs.LoadEnv(files.EnvFile); err != nil {
			fmt.Printf("[config] warning: failed to load .env file %s: %v\n", files.EnvFile, err)
		}
	}

	v.AutomaticEnv()
	autoBindEnvVars(v)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// autoBindEnvVars binds every environment variable under all nested key
// spellings it could stand for.
func autoBindEnvVars(v *viper.Viper) {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		for _, variant := range generateEnvKeyVariants(pair[0]) {
			v.Set(variant, pair[1])
		}
	}
}

// generateEnvKeyVariants creates the key variants an environment variable
// may address. Every split point between a dotted prefix and an
// underscore-joined suffix is produced, recursively for the suffix:
//
//	TRANSCRIBER_ENGINE_POLL_INTERVAL -> [transcriber_engine_poll_interval,
//	    transcriber.engine_poll_interval, transcriber.engine.poll_interval, ...]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")
	if len(parts) > maxEnvKeyParts {
		return removeDuplicates([]string{lowerKey, strings.ReplaceAll(lowerKey, "_", ".")})
	}
	return removeDuplicates(joinVariants(parts))
}

// maxEnvKeyParts bounds the 2^(n-1) variant expansion.
const maxEnvKeyParts = 8

func joinVariants(parts []string) []string {
	if len(parts) == 1 {
		return []string{parts[0]}
	}
	out := []string{strings.Join(parts, "_")}
	for i := 1; i < len(parts); i++ {
		head := strings.Join(parts[:i], "_")
		for _, tail := range joinVariants(parts[i:]) {
			out = append(out, head+"."+tail)
		}
	}
	return out
}

// removeDuplicates removes duplicate strings from a slice.
func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}
