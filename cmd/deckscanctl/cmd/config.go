package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardtrack/deckscan/internal/config"
)

// NewConfigCmd exposes get/set/dump against the configuration store.
func NewConfigCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "inspect or edit the configuration store",
		Long:  "config loads the tiered configuration store (bundle, /etc, /usr/local/etc, ~/.deckscan) and lets callers read, write, or dump it",
	}
	cmd.PersistentFlags().String("path", "", "config file path for get/set persistence (defaults to ~/.deckscan/config.yaml)")
	cmd.AddCommand(newConfigGetCmd(), newConfigSetCmd(), newConfigDumpCmd())
	return cmd
}

func loadStore() (*config.Store, error) {
	s := config.New()
	if err := s.LoadTiers(config.Defaults(), "deckscan"); err != nil {
		return nil, err
	}
	return s, nil
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return fmt.Errorf("config get: %w", err)
			}
			e, ok := s.Get(args[0])
			if !ok {
				return fmt.Errorf("config get: no such key %q", args[0])
			}
			fmt.Println(e.Value.String())
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "set a configuration value as a string override",
		Long:  "set installs a String-kind value for key; use the config file directly for other value kinds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return fmt.Errorf("config set: %w", err)
			}
			s.Set(args[0], config.StringValue(args[1]))

			path, _ := cmd.Flags().GetString("path")
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("config set: resolving home directory: %w", err)
				}
				path = home + "/.deckscan/config.yaml"
			}
			if err := s.Save(path); err != nil {
				return fmt.Errorf("config set: %w", err)
			}
			return nil
		},
	}
}

func newConfigDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "print every configuration key as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return fmt.Errorf("config dump: %w", err)
			}
			out := make(map[string]string)
			for _, k := range s.Keys() {
				e, _ := s.Get(k)
				out[k] = e.Value.String()
			}
			j, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("config dump: %w", err)
			}
			fmt.Println(string(j))
			return nil
		},
	}
}
