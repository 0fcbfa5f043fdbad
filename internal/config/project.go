package config

import (
	"github.com/spf13/pflag"
)

// ProjectConfig holds configuration for the project command.
type ProjectConfig struct {
	In         string
	PGDSN      string
	SS58Prefix uint16
	Migrate    bool
	LogLevel   string
}

// LoadProject merges config file, environment variables, and flags into ProjectConfig.
func LoadProject(cfgFile string, flags *pflag.FlagSet) (ProjectConfig, error) {
	v := newViper()

	v.SetDefault("ss58-prefix", 2)
	v.SetDefault("migrate", true)
	v.SetDefault("log-level", "info")

	if err := bindSources(v, cfgFile, flags); err != nil {
		return ProjectConfig{}, err
	}

	cfg := ProjectConfig{
		In:         v.GetString("in"),
		PGDSN:      v.GetString("pg-dsn"),
		SS58Prefix: uint16(v.GetUint32("ss58-prefix")),
		Migrate:    v.GetBool("migrate"),
		LogLevel:   v.GetString("log-level"),
	}

	return cfg, nil
}
