// Package config loads the engine's run configuration: defaults, then an
// optional YAML file, then environment overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every option the bisimulation engine and FSM checker
// recognise.
type Config struct {
	UseFSMChecker             bool  `yaml:"use-fsm-checker"`
	NoRefinement              bool  `yaml:"no-refinement"`
	NoCoarsening              bool  `yaml:"no-coarsening"`
	PerformExtraChecks        bool  `yaml:"perform-extra-checks"`
	RandomSeed                int64 `yaml:"random-seed"`
	IncomingTransitionSplit   bool  `yaml:"incoming-transition-split"`
	KTailsK                   int   `yaml:"k-tails-k"`
	WarshallTransitiveClosure bool  `yaml:"warshall-transitive-closure"`
}

// Default returns the engine's default configuration.
func Default() *Config {
	return &Config{
		UseFSMChecker:             true,
		NoRefinement:              false,
		NoCoarsening:              false,
		PerformExtraChecks:        false,
		RandomSeed:                0,
		IncomingTransitionSplit:   false,
		KTailsK:                   1,
		WarshallTransitiveClosure: false,
	}
}

// Load starts from Default, merges in path (if non-empty and present), and
// applies SYNOPTIC_* environment overrides. A missing path is not an
// error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.loadEnv()
	return cfg, nil
}

func (c *Config) loadEnv() {
	if v := os.Getenv("SYNOPTIC_RANDOM_SEED"); v != "" {
		var seed int64
		if _, err := fmt.Sscanf(v, "%d", &seed); err == nil {
			c.RandomSeed = seed
		}
	}
	if v := os.Getenv("SYNOPTIC_K_TAILS_K"); v != "" {
		var k int
		if _, err := fmt.Sscanf(v, "%d", &k); err == nil {
			c.KTailsK = k
		}
	}
	if os.Getenv("SYNOPTIC_NO_REFINEMENT") == "1" {
		c.NoRefinement = true
	}
	if os.Getenv("SYNOPTIC_NO_COARSENING") == "1" {
		c.NoCoarsening = true
	}
}
