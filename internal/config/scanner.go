package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ScannerConfig controls the expiration warning scan.
type ScannerConfig struct {
	WarningWindowDays int `mapstructure:"warningWindowDays"`
	BatchSize         int `mapstructure:"batchSize"`
	LockTTLSeconds    int `mapstructure:"lockTTLSeconds"`
}

func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		WarningWindowDays: 3,
		BatchSize:         200,
		LockTTLSeconds:    120,
	}
}

// ScannerConfigHolder serves the current scanner config and hot-reloads it
// when the backing file changes.
type ScannerConfigHolder struct {
	current atomic.Value // holds ScannerConfig
}

func NewScannerConfigHolder() (*ScannerConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("scanner")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/paperforge/config")
	v.AddConfigPath("/etc/paperforge")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PAPERFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
		defaults := DefaultScannerConfig()
		v.SetDefault("scanner.warningWindowDays", defaults.WarningWindowDays)
		v.SetDefault("scanner.batchSize", defaults.BatchSize)
		v.SetDefault("scanner.lockTTLSeconds", defaults.LockTTLSeconds)
	}

	var cfg ScannerConfig
	if err := v.UnmarshalKey("scanner", &cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if err := validateScannerConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ScannerConfigHolder{}
	holder.current.Store(cfg)

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated ScannerConfig
			if err := v.UnmarshalKey("scanner", &updated); err != nil {
				log.Printf("[scanner-config] reload failed: %v", err)
				return
			}
			updated = updated.withDefaults()
			if err := validateScannerConfig(updated); err != nil {
				log.Printf("[scanner-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[scanner-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *ScannerConfigHolder) Get() ScannerConfig {
	return h.current.Load().(ScannerConfig)
}

// NewStaticScannerConfigHolder returns a holder pinned to cfg, for tests.
func NewStaticScannerConfigHolder(cfg ScannerConfig) *ScannerConfigHolder {
	holder := &ScannerConfigHolder{}
	holder.current.Store(cfg.withDefaults())
	return holder
}

func (c ScannerConfig) withDefaults() ScannerConfig {
	defaults := DefaultScannerConfig()
	if c.WarningWindowDays <= 0 {
		c.WarningWindowDays = defaults.WarningWindowDays
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.LockTTLSeconds <= 0 {
		c.LockTTLSeconds = defaults.LockTTLSeconds
	}
	return c
}

func validateScannerConfig(cfg ScannerConfig) error {
	if cfg.WarningWindowDays > 60 {
		return errors.New("scanner.warningWindowDays out of range")
	}
	return nil
}
