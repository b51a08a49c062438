package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"synnergy-network/evmdeploy/core"
	"synnergy-network/evmdeploy/pkg/config"
	"synnergy-network/evmdeploy/rpcprovider"
)

func main() {
	rootCmd := &cobra.Command{Use: "pipeline"}
	rootCmd.PersistentFlags().String("rpc-url", "", "JSON-RPC endpoint URL (overrides config/env)")
	rootCmd.PersistentFlags().String("private-key", "", "hex-encoded signer private key (overrides config/env)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory data references are resolved against (overrides config/env)")
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(validateCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadRunConfig(cmd *cobra.Command) (*config.RunConfig, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("rpc-url"); v != "" {
		cfg.RPCURL = v
	}
	if v, _ := cmd.Flags().GetString("private-key"); v != "" {
		cfg.PrivateKey = v
	}
	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	return cfg, nil
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	if parsed, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(parsed)
	}
	return log
}

// runCmd registers and executes a pipeline config end to end.
func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [config]",
		Short: "register and execute a pipeline config against a live RPC endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runConfig, err := loadRunConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(runConfig.LogLevel)

			pipelineCfg, err := core.LoadConfig(args[0])
			if err != nil {
				return err
			}

			ctx := context.Background()
			client, err := rpcprovider.Dial(ctx, runConfig.RPCURL, runConfig.PrivateKey, runConfig.ChainID, log)
			if err != nil {
				return err
			}

			source := core.NewFileDataSource(runConfig.DataDir)
			engine := core.NewEngine(client, source, log)
			if err := engine.RegisterConfig(pipelineCfg); err != nil {
				return err
			}
			if err := engine.Execute(ctx); err != nil {
				return err
			}
			fmt.Println("pipeline run completed")
			return nil
		},
	}
}

// validateCmd registers a pipeline config (parses it, seeds declared
// variables, and topologically sorts its actions) without executing any
// on-chain calls, surfacing config and dependency errors cheaply.
func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config]",
		Short: "parse and schedule a pipeline config without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runConfig, err := loadRunConfig(cmd)
			if err != nil {
				return err
			}
			pipelineCfg, err := core.LoadConfig(args[0])
			if err != nil {
				return err
			}
			source := core.NewFileDataSource(runConfig.DataDir)
			engine := core.NewEngine(nil, source, newLogger(runConfig.LogLevel))
			if err := engine.RegisterConfig(pipelineCfg); err != nil {
				return err
			}
			fmt.Printf("config valid: %d actions scheduled\n", len(pipelineCfg.Actions))
			return nil
		},
	}
}
