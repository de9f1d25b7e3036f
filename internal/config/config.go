package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"riichiscore/internal/domain"
)

// RulesConfig holds table-rule settings that are fixed for the lifetime of
// the process.
type RulesConfig struct {
	// StartingPoints is the stack each seat begins with. The conserved total
	// is always four times this value.
	StartingPoints int `json:"starting_points"`
	// DefaultNames are the display names a fresh match starts with, by seat
	// order. Blank entries fall back to the wind labels.
	DefaultNames []string `json:"default_names"`
}

var (
	cfg      *RulesConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadRulesConfig loads the rules configuration from the given path. It is
// safe to call more than once; only the first call reads the file.
func LoadRulesConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read rules config: %w", err)
			return
		}

		var c RulesConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal rules config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetStartingPoints returns the configured starting stack, or the standard
// 25000 when no config was loaded or the value is unusable.
func GetStartingPoints() int {
	if cfg == nil || cfg.StartingPoints <= 0 {
		return domain.DefaultStartingPoints
	}
	return cfg.StartingPoints
}

// GetDefaultNames returns the configured seat names, padded with wind labels
// for seats the config leaves blank.
func GetDefaultNames() [domain.SeatCount]string {
	var names [domain.SeatCount]string
	for i := range names {
		if cfg != nil && i < len(cfg.DefaultNames) && cfg.DefaultNames[i] != "" {
			names[i] = cfg.DefaultNames[i]
		} else {
			names[i] = domain.Seat(i).WindLabel()
		}
	}
	return names
}
