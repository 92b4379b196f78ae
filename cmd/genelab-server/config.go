package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/daniacca/genelab/internal/lab"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds the server configuration
type ServerConfig struct {
	Addr            string
	LogLevel        string
	ContentDir      string
	RulesFile       string
	LevelCap        int
	SimulationDelay time.Duration
	VerdictMode     string
	Seed            uint64
	WebhookURL      string
}

// configResolver resolves one option: flag, then environment, then default.
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

func intSetter(name string, def int, set func(*ServerConfig, int)) func(*ServerConfig, string) {
	return func(c *ServerConfig, v string) {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("Invalid value for %s: %s, using default %d", name, v, def)
			n = def
		}
		set(c, n)
	}
}

func resolvers() []configResolver {
	return []configResolver{
		{
			flagName:    "addr",
			envVarName:  "GENELAB_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "log-level",
			envVarName:  "GENELAB_LOG_LEVEL",
			defaultVal:  "info",
			description: "Log level: debug, info, warn, error",
			setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
		},
		{
			flagName:    "content-dir",
			envVarName:  "GENELAB_CONTENT_DIR",
			defaultVal:  "",
			description: "optional directory with levels/pathogens/organisms/components YAML overriding the built-in tables",
			setter:      func(c *ServerConfig, v string) { c.ContentDir = v },
		},
		{
			flagName:    "rules-file",
			envVarName:  "GENELAB_RULES_FILE",
			defaultVal:  "",
			description: "optional YAML file with game rules (level cap, tutorial steps, verdict points)",
			setter:      func(c *ServerConfig, v string) { c.RulesFile = v },
		},
		{
			flagName:    "level-cap",
			envVarName:  "GENELAB_LEVEL_CAP",
			defaultVal:  "0",
			description: "levels playable per mode; 0 uses the level table size",
			setter:      intSetter("level-cap", 0, func(c *ServerConfig, n int) { c.LevelCap = n }),
		},
		{
			flagName:    "simulation-delay",
			envVarName:  "GENELAB_SIMULATION_DELAY",
			defaultVal:  "2s",
			description: "time a simulation takes before its verdict lands",
			setter: func(c *ServerConfig, v string) {
				d, err := time.ParseDuration(v)
				if err != nil || d <= 0 {
					log.Printf("Invalid value for simulation-delay: %s, using default 2s", v)
					d = lab.DefaultSimulationDelay
				}
				c.SimulationDelay = d
			},
		},
		{
			flagName:    "verdict-mode",
			envVarName:  "GENELAB_VERDICT_MODE",
			defaultVal:  lab.VerdictModeDomain,
			description: "how simulate decides outcomes: domain (detailed simulation) or random (60% roll)",
			setter:      func(c *ServerConfig, v string) { c.VerdictMode = v },
		},
		{
			flagName:    "seed",
			envVarName:  "GENELAB_SEED",
			defaultVal:  "0",
			description: "seed for the random verdict mode; 0 uses crypto randomness",
			setter: func(c *ServerConfig, v string) {
				n, err := strconv.ParseUint(v, 10, 64)
				if err != nil {
					log.Printf("Invalid value for seed: %s, using default 0", v)
				}
				c.Seed = n
			},
		},
		{
			flagName:    "webhook-url",
			envVarName:  "GENELAB_WEBHOOK_URL",
			defaultVal:  "",
			description: "optional progress service URL that receives level completions and achievements",
			setter:      func(c *ServerConfig, v string) { c.WebhookURL = v },
		},
	}
}

// loadServerConfig parses CLI flags and environment variables.
func loadServerConfig() ServerConfig {
	return resolveConfig(flag.CommandLine, os.Args[1:], os.Getenv)
}

func resolveConfig(fs *flag.FlagSet, args []string, getenv func(string) string) ServerConfig {
	cfg := ServerConfig{}
	rs := resolvers()

	flagVars := make(map[string]*string)
	for _, r := range rs {
		flagVars[r.flagName] = fs.String(r.flagName, "", r.description)
	}
	_ = fs.Parse(args)

	for _, r := range rs {
		var value string
		if *flagVars[r.flagName] != "" {
			value = *flagVars[r.flagName]
		} else if envValue := getenv(r.envVarName); envValue != "" {
			value = envValue
		} else {
			value = r.defaultVal
		}
		r.setter(&cfg, value)
	}
	return cfg
}

// loadRulesFile reads game rules from YAML. Fields left out keep defaults.
func loadRulesFile(path string) (lab.Rules, error) {
	rules := lab.DefaultRules()
	if path == "" {
		return rules, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return rules, fmt.Errorf("rules file %s does not exist", path)
		}
		return rules, err
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if rules.LevelCap < 0 || rules.TutorialSteps < 0 {
		return rules, fmt.Errorf("rules file %s: level_cap and tutorial_steps cannot be negative", path)
	}
	return rules, nil
}
