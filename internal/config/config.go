package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ruflab/simple-shapes-dataset/internal/logging"
	"github.com/ruflab/simple-shapes-dataset/pkg/alignment"
	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Group is one entry of the alignment request.
type Group struct {
	Domains    []string `yaml:"domains" json:"domains"`
	Proportion float64  `yaml:"proportion" json:"proportion"`
}

// Redis configures the shared assignment store.
type Redis struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	TTL      string `yaml:"ttl" json:"ttl"`
}

// Config is the file format read by the shapes command.
type Config struct {
	DatasetPath string                    `yaml:"dataset_path" json:"dataset_path"`
	Split       string                    `yaml:"split" json:"split"`
	Domains     []string                  `yaml:"domains" json:"domains"`
	DomainArgs  map[string]map[string]any `yaml:"domain_args" json:"domain_args"`
	Groups      []Group                   `yaml:"groups" json:"groups"`
	MaxSize     int                       `yaml:"max_size" json:"max_size"`
	Seed        int64                     `yaml:"seed" json:"seed"`
	Redis       *Redis                    `yaml:"redis" json:"redis"`
	Listen      string                    `yaml:"listen" json:"listen"`
	LogLevel    string                    `yaml:"log_level" json:"log_level"`
}

// Default returns the values used for fields a file leaves out.
func Default() *Config {
	return &Config{
		Split:    domain.SplitTrain,
		Listen:   ":8080",
		LogLevel: "info",
	}
}

// Load reads a YAML or JSON file (by extension) over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	return cfg, nil
}

// Validate reports every problem of the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DatasetPath == "" {
		errs = append(errs, errors.New("dataset_path is required"))
	}
	if !domain.ValidSplit(c.Split) {
		errs = append(errs, fmt.Errorf("split %q must be train, val or test", c.Split))
	}
	if c.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("max_size must not be negative, got %d", c.MaxSize))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[domain.GroupKey]bool)
	for i, g := range c.Groups {
		key := domain.NewGroupKey(g.Domains...)
		switch {
		case key.IsZero():
			errs = append(errs, fmt.Errorf("groups[%d] has no domains", i))
		case seen[key]:
			errs = append(errs, fmt.Errorf("groups[%d]: group %s is listed twice", i, key))
		}
		seen[key] = true
		if !(g.Proportion > 0 && g.Proportion <= 1) {
			errs = append(errs, fmt.Errorf("groups[%d]: proportion %v is outside (0, 1]", i, g.Proportion))
		}
	}

	if c.Redis != nil {
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required"))
		}
		if _, err := c.Redis.TTLDuration(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return &domain.ConfigError{Key: "config", Reason: "invalid configuration file", Err: errors.Join(errs...)}
	}
	return nil
}

// Proportions converts the groups into an alignment request.
func (c *Config) Proportions() alignment.Proportions {
	props := make(alignment.Proportions, len(c.Groups))
	for _, g := range c.Groups {
		props[domain.NewGroupKey(g.Domains...)] = g.Proportion
	}
	return props
}

// DomainIDs returns the domains to load: the explicit list when set,
// otherwise every domain the groups mention.
func (c *Config) DomainIDs() []string {
	if len(c.Domains) > 0 {
		return append([]string(nil), c.Domains...)
	}
	seen := make(map[string]bool)
	var ids []string
	for _, g := range c.Groups {
		for _, id := range domain.NewGroupKey(g.Domains...).Domains() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// TTLDuration parses TTL; empty means no expiration.
func (r *Redis) TTLDuration() (time.Duration, error) {
	if r.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 0, fmt.Errorf("redis.ttl: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("redis.ttl must not be negative, got %s", r.TTL)
	}
	return d, nil
}
