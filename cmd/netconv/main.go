package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := newRootCmd().Execute(); err != nil {
		var code exitCode
		if errors.As(err, &code) {
			os.Exit(int(code))
		}
		log.Fatal().Err(err).Msg("netconv failed")
	}
}

// exitCode ends the process with a status and no further message.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "netconv",
		Short: "Generate network device configurations from a parameter sheet",
		Long: `netconv renders one configuration file per device. Each worksheet of the
parameter sheet describes a device; the rule file turns its rows into command
blocks that replace the %%MARKER%% lines of the configuration sample.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCreateConfigCmd(), newCheckCmd())
	return root
}
