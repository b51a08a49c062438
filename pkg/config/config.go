// Package config provides a reusable loader for the pipeline engine's
// ambient process configuration: the RPC endpoint, signing key, and data
// directory the cmd/pipeline binary needs before it can register and
// execute a pipeline Config. It is versioned so callers can depend on a
// stable API contract.
//
// Version: v0.2.0
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"synnergy-network/evmdeploy/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.2.0"

// RunConfig is the unified ambient configuration for a pipeline run.
type RunConfig struct {
	RPCURL     string `mapstructure:"rpc_url" json:"rpc_url"`
	PrivateKey string `mapstructure:"private_key" json:"private_key"`
	DataDir    string `mapstructure:"data_dir" json:"data_dir"`
	LogLevel   string `mapstructure:"log_level" json:"log_level"`
	ChainID    int64  `mapstructure:"chain_id" json:"chain_id"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig RunConfig

// Load reads an optional config file (name "pipeline", searched under
// "." and "config") merged with environment-specific overrides named by
// env, then applies environment variable overrides (PIPELINE_* via
// AutomaticEnv, plus a best-effort .env file load). A missing config
// file is not an error: env vars and flag defaults alone are a valid
// configuration for this engine.
func Load(env string) (*RunConfig, error) {
	_ = godotenv.Load()

	viper.SetConfigName("pipeline")
	viper.AddConfigPath(".")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("PIPELINE")
	viper.AutomaticEnv()

	viper.SetDefault("rpc_url", "http://127.0.0.1:8545")
	viper.SetDefault("private_key", "")
	viper.SetDefault("data_dir", ".")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("chain_id", 1)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, utils.Wrap(err, "load config")
		}
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the PIPELINE_ENV environment
// variable to select an optional override file.
func LoadFromEnv() (*RunConfig, error) {
	return Load(utils.EnvOrDefault("PIPELINE_ENV", ""))
}
