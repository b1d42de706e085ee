// Package main implements the earthkit-presets tool for managing the
// preset store used by the API server.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ecmwf/earthkit-time/internal/cli"
	"github.com/ecmwf/earthkit-time/internal/config"
	"github.com/ecmwf/earthkit-time/internal/presetstore"
	"github.com/ecmwf/earthkit-time/preset"
	"github.com/ecmwf/earthkit-time/sequence"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var storePath string

	registerStoreFlag := func(flags *pflag.FlagSet) {
		flags.StringVar(&storePath, "store", "", "path to the preset database (default $STORE_PATH)")
	}

	// Keep the store's info logging out of the tool output.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	openStore := func(ctx context.Context) (*presetstore.Store, error) {
		path := storePath
		if path == "" {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			path = cfg.StorePath
		}
		store, err := presetstore.Open(presetstore.DefaultConfig(path), quiet)
		if err != nil {
			return nil, err
		}
		if _, err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	}

	commands := map[string]cli.Command{
		"import": {
			Summary: "import a YAML sequence file into the store",
			Flags:   registerStoreFlag,
			Run: func(_ *pflag.FlagSet, args []string) error {
				if len(args) < 1 {
					return fmt.Errorf("missing file argument")
				}
				ctx := context.Background()
				store, err := openStore(ctx)
				if err != nil {
					return err
				}
				defer store.Close()

				for _, path := range args {
					definition, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					var description map[string]any
					if err := yaml.Unmarshal(definition, &description); err != nil {
						return fmt.Errorf("%s: %v", path, err)
					}
					if _, err := sequence.FromMap(description); err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
					if _, err := store.SavePreset(ctx, name, string(definition)); err != nil {
						return err
					}
					fmt.Printf("imported %s\n", name)
				}
				return nil
			},
		},
		"list": {
			Summary: "list presets (stored and built-in)",
			Flags:   registerStoreFlag,
			Run: func(_ *pflag.FlagSet, _ []string) error {
				ctx := context.Background()
				store, err := openStore(ctx)
				if err != nil {
					return err
				}
				defer store.Close()

				stored, err := store.ListPresets(ctx)
				if err != nil {
					return err
				}
				seen := make(map[string]bool, len(stored))
				for _, p := range stored {
					seen[p.Name] = true
					fmt.Printf("%s\t(stored)\n", p.Name)
				}

				names, err := preset.FromEnvironment().Names()
				if err != nil {
					return err
				}
				for _, name := range names {
					if !seen[name] {
						fmt.Printf("%s\t(builtin)\n", name)
					}
				}
				return nil
			},
		},
		"delete": {
			Summary: "delete stored presets by name",
			Flags:   registerStoreFlag,
			Run: func(_ *pflag.FlagSet, args []string) error {
				if len(args) < 1 {
					return fmt.Errorf("missing name argument")
				}
				ctx := context.Background()
				store, err := openStore(ctx)
				if err != nil {
					return err
				}
				defer store.Close()

				for _, name := range args {
					if err := store.DeletePreset(ctx, name); err != nil {
						return err
					}
					fmt.Printf("deleted %s\n", name)
				}
				return nil
			},
		},
		"show": {
			Summary: "print the definition of a preset",
			Flags:   registerStoreFlag,
			Run: func(_ *pflag.FlagSet, args []string) error {
				if len(args) < 1 {
					return fmt.Errorf("missing name argument")
				}
				ctx := context.Background()
				store, err := openStore(ctx)
				if err != nil {
					return err
				}
				defer store.Close()

				name := args[0]
				stored, err := store.GetPreset(ctx, name)
				if err == nil {
					fmt.Print(stored.Definition)
					return nil
				}
				if !presetstore.IsNotFound(err) {
					return err
				}
				description, err := preset.FromEnvironment().Description(name)
				if err != nil {
					return err
				}
				out, err := yaml.Marshal(description)
				if err != nil {
					return err
				}
				fmt.Print(string(out))
				return nil
			},
		},
	}

	return cli.Run("earthkit-presets", os.Args[1:], commands)
}
