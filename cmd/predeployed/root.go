package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/streaming-dev/IMA/pkg/config"
	"github.com/streaming-dev/IMA/pkg/storage"
)

// Version is set at build time via ldflags.
var Version string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "predeployed",
		Short:        "Generate genesis storage for predeployed IMA contracts.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if getBool(cmd, "version") {
				fmt.Fprintf(cmd.OutOrStdout(), "predeployed %s\n", version())
				return nil
			}
			return cmd.Help()
		},
	}

	root.Flags().Bool("version", false, "print the version and exit")
	root.PersistentFlags().StringP("config", "c", "", "path to a JSON configuration file")
	root.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	root.PersistentFlags().String("schain-name", "", "schain name (overrides config)")
	root.PersistentFlags().String("community-pool", "", "community pool address (overrides config)")
	root.PersistentFlags().String("deployer", "", "deployer address (overrides config)")
	root.PersistentFlags().String("artifacts", "", "artifacts directory (overrides config)")

	root.AddCommand(newStorageCmd(), newAllocCmd(), newGenesisCmd())
	return root
}

func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(unknown version)"
}

// newLogger writes to stderr so stdout stays machine readable.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	if getBool(cmd, "verbose") {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// loadConfig reads the configuration file at path, if any, and applies flag
// overrides on top of it.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if name := getString(cmd, "schain-name"); name != "" {
		cfg.SchainName = name
	}
	if dir := getString(cmd, "artifacts"); dir != "" {
		cfg.ArtifactsDir = dir
	}
	if s := getString(cmd, "community-pool"); s != "" {
		addr, err := storage.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("--community-pool: %w", err)
		}
		cfg.CommunityPoolAddress = &addr
	}
	if s := getString(cmd, "deployer"); s != "" {
		addr, err := storage.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("--deployer: %w", err)
		}
		cfg.DeployerAddress = &addr
	}

	if err := cfg.Validate(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func getBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(err)
	}
	return v
}

func getString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(err)
	}
	return v
}
