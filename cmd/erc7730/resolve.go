package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clear-signing/erc7730/output"
)

func newResolveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <descriptor.json>",
		Short: "Resolve a descriptor: fetch URLs, inline references and constants, normalize paths and selectors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var buffered output.Buffered
			resolved, err := a.loadAndResolve(cmd.Context(), args[0], &buffered)
			if err != nil {
				return err
			}
			if buffered.HasErrors() {
				return fmt.Errorf("descriptor %s could not be resolved", args[0])
			}
			return writeJSON(cmd, resolved)
		},
	}
}
