package client

import (
	"github.com/spf13/cobra"
)

// Commands returns the client commands, for embedding under another root.
func Commands() []*cobra.Command {
	return []*cobra.Command{
		NewSendCommand(),
		NewChatCommand(),
		NewListCommand(),
		NewWatchCommand(),
	}
}

// NewRoot constructs a root Cobra command for the greetd client.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "greetd",
		Short:         "greetd client commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(Commands()...)
	return root
}
