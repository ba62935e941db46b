package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/streaming-dev/IMA/pkg/genesis"
	"github.com/streaming-dev/IMA/pkg/state"
)

func newStorageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "storage [config.json...]",
		Short: "Print the CommunityLocker storage mapping as JSON.",
		Long: "Print the CommunityLocker storage mapping as JSON. Given several " +
			"configuration files, generate them in parallel and print one mapping per file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if len(args) == 0 {
				cfg, err := loadConfig(cmd, getString(cmd, "config"))
				if err != nil {
					return err
				}
				s, err := genesis.NewBuilder(cfg, nil, logger).Storage()
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), s.Hex())
			}

			jobs := make([]genesis.Job, len(args))
			for i, path := range args {
				cfg, err := loadConfig(cmd, path)
				if err != nil {
					return err
				}
				if jobs[i], err = genesis.NewBuilder(cfg, nil, logger).StorageJob(); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			results, err := genesis.GenerateBatch(cmd.Context(), jobs)
			if err != nil {
				return err
			}

			out := make(map[string]map[string]string, len(args))
			for i, path := range args {
				out[path] = results[i].Hex()
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newAllocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alloc",
		Short: "Print every predeployed account with code and storage.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, err := newBuilder(cmd)
			if err != nil {
				return err
			}
			image, err := loadBase(cmd)
			if err != nil {
				return err
			}
			if err := builder.ApplyTo(image); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), image.Dump())
		},
	}
	cmd.Flags().String("base", "", "alloc dump to write the predeployed accounts into")
	return cmd
}

func newGenesisCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genesis",
		Short: "Print a genesis file holding the predeployed accounts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, err := newBuilder(cmd)
			if err != nil {
				return err
			}
			g, err := genesis.CreateGenesis(builder)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), g)
		},
	}
}

func newBuilder(cmd *cobra.Command) (*genesis.Builder, error) {
	cfg, err := loadConfig(cmd, getString(cmd, "config"))
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	arts, err := genesis.LoadArtifacts(cfg)
	if err != nil {
		return nil, err
	}
	return genesis.NewBuilder(cfg, arts, logger), nil
}

// loadBase returns the image named by --base, or an empty one.
func loadBase(cmd *cobra.Command) (*state.Allocation, error) {
	image := state.NewAllocation()
	path := getString(cmd, "base")
	if path == "" {
		return image, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read base allocation: %w", err)
	}
	if err := image.LoadJSON(data); err != nil {
		return nil, fmt.Errorf("failed to parse base allocation %s: %w", path, err)
	}
	return image, nil
}
