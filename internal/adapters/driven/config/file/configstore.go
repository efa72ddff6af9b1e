package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/ports/driven"
	"github.com/custodia-labs/mcpland/internal/logger"
)

// Configuration file names, in lookup order.
const (
	JSONFileName = "mcpland.json"
	TOMLFileName = "mcpland.toml"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigLoader = (*ConfigStore)(nil)

// ConfigStore holds the configuration document loaded from a JSON or TOML
// file. The file is read by NewConfigStore and again only on Reload.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	config   domain.Config
}

// Locate returns the configuration file under rootDir: mcpland.json if it
// exists, else mcpland.toml if it exists, else the mcpland.json path.
func Locate(rootDir string) string {
	for _, name := range []string{JSONFileName, TOMLFileName} {
		path := filepath.Join(rootDir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return filepath.Join(rootDir, JSONFileName)
}

// NewConfigStore loads the configuration at filePath.
// A missing file yields the zero Config; a malformed file is an error.
func NewConfigStore(filePath string) (*ConfigStore, error) {
	if filePath == "" {
		return nil, fmt.Errorf("%w: config path is required", domain.ErrInvalidInput)
	}

	s := &ConfigStore{filePath: filePath}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Config returns the loaded configuration.
func (s *ConfigStore) Config() domain.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Reload re-reads the configuration file. On failure the previously
// loaded configuration is kept.
func (s *ConfigStore) Reload() error {
	cfg, err := load(s.filePath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

func load(path string) (domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("No config file at %s, using defaults", path)
			return domain.Config{}, nil
		}
		return domain.Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := Parse(data, formatOf(path))
	if err != nil {
		return domain.Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	logger.Debug("Loaded config from %s", path)
	return cfg, nil
}

// Format is a configuration file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

func formatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// Parse decodes a configuration document. Empty input and JSON null
// decode to the zero Config.
func Parse(data []byte, format Format) (domain.Config, error) {
	var cfg domain.Config
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return domain.Config{}, err
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return domain.Config{}, err
		}
	default:
		return domain.Config{}, fmt.Errorf("%w: unsupported config format %q", domain.ErrInvalidInput, format)
	}

	return cfg, nil
}
