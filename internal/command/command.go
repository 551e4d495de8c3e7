package command

import (
	commandHandler "atlas/internal/command/handler"

	"github.com/google/wire"
	"github.com/spf13/cobra"
)

var ProviderSet = wire.NewSet(NewCommand, commandHandler.NewSyncFullHandler)

type Command struct {
	syncFullCommandHandler *commandHandler.SyncFullHandler
}

// NewCommand .
func NewCommand(
	syncFullCommandHandler *commandHandler.SyncFullHandler,
) *Command {
	return &Command{
		syncFullCommandHandler: syncFullCommandHandler,
	}
}

func Register(rootCmd *cobra.Command, newCmd func() (*Command, func(), error)) {
	var tenantHex string

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "run a full hierarchy sync for one tenant",
		Run: func(cmd *cobra.Command, args []string) {
			command, cleanup, err := newCmd()
			if err != nil {
				panic(err)
			}
			defer cleanup()

			command.syncFullCommandHandler.Run(cmd, tenantHex)
		},
	}
	syncCmd.Flags().StringVar(&tenantHex, "tenant", "", "tenant id (hex)")
	_ = syncCmd.MarkFlagRequired("tenant")

	rootCmd.AddCommand(syncCmd)
}
