package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sightglass-data/sgtool/internal/logger"
	"github.com/sightglass-data/sgtool/internal/plugin"
)

type rootFlags struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "sgtool",
		Short:         "sgtool administers the Sightglass analytics platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newSyncerCmd(flags))
	cmd.AddCommand(newPipeCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// appContext bundles the services the syncer commands share.
type appContext struct {
	Log      *logger.Logger
	Catalog  *plugin.Catalog
	Registry *plugin.Registry
	Resolver *plugin.Resolver
}

func newAppContext(flags *rootFlags) (*appContext, error) {
	level := "info"
	if flags.verbose {
		level = "debug"
	}

	log, err := logger.New(logger.Options{
		Level:         level,
		HumanReadable: term.IsTerminal(int(os.Stderr.Fd())),
		Writer:        os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	catalog, err := newBuiltinCatalog()
	if err != nil {
		return nil, err
	}

	registry := plugin.NewRegistry()
	resolver := plugin.NewResolver(catalog, registry, plugin.NewAptInstaller(log), log)

	return &appContext{
		Log:      log,
		Catalog:  catalog,
		Registry: registry,
		Resolver: resolver,
	}, nil
}
