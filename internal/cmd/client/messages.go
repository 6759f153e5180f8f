package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rzbill/greetd/internal/cmd/client/transports"
)

// NewSendCommand greets a single name.
func NewSendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send NAME",
		Short: "Greet one name and print the reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := getTransport(cmd)
			if err != nil {
				return err
			}
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			msg, err := tr.Send(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return p(msg)
		},
	}
	addConnFlags(cmd)
	return cmd
}

// NewChatCommand streams names over one session. Names come from the
// arguments, or from stdin one per line when none are given.
func NewChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [NAME...]",
		Short: "Stream names and print each greeting as it is acknowledged",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := getTransport(cmd)
			if err != nil {
				return err
			}
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			names := make(chan string)
			go func() {
				defer close(names)
				emit := func(n string) bool {
					select {
					case names <- n:
						return true
					case <-ctx.Done():
						return false
					}
				}
				if len(args) > 0 {
					for _, a := range args {
						if !emit(a) {
							return
						}
					}
					return
				}
				sc := bufio.NewScanner(cmd.InOrStdin())
				for sc.Scan() {
					line := strings.TrimSpace(sc.Text())
					if line == "" {
						continue
					}
					if !emit(line) {
						return
					}
				}
			}()
			return tr.Chat(ctx, names, p)
		},
	}
	addConnFlags(cmd)
	return cmd
}

// NewListCommand prints every stored greeting.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored greetings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := getTransport(cmd)
			if err != nil {
				return err
			}
			msgs, err := tr.List(cmd.Context())
			if err != nil {
				return err
			}
			return printList(cmd, msgs)
		},
	}
	addConnFlags(cmd)
	return cmd
}

// NewWatchCommand follows the live feed.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow greetings as they are published",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			if limit < 0 {
				return fmt.Errorf("invalid --limit %d", limit)
			}
			tr, err := getTransport(cmd)
			if err != nil {
				return err
			}
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			seen := 0
			err = tr.Watch(cmd.Context(), func(msg string) error {
				if err := p(msg); err != nil {
					return err
				}
				seen++
				if limit > 0 && seen >= limit {
					return transports.ErrStop
				}
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	addConnFlags(cmd)
	cmd.Flags().Int("limit", 0, "Stop after N greetings (0 = follow until interrupted)")
	return cmd
}
