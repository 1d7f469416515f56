package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/thalesor/repoprovas/core"
	"github.com/thalesor/repoprovas/services/backend/memory"
)

func (cli *commandLine) tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token EMAIL",
		Short: "Issue a session token accepted by the mock backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := core.CleanString(args[0], true)
			if email == "" {
				return errors.New("email is required")
			}
			sessions := memory.NewSessions(cli.conf.Mock.SecretKey, cli.conf.Mock.TokenExpirationDelta)
			token, err := sessions.Issue(email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
