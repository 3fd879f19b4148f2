package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clear-signing/erc7730/convert/calldata"
	"github.com/clear-signing/erc7730/convert/eip712"
	"github.com/clear-signing/erc7730/output"
)

func newConvertCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a resolved descriptor to a wallet artifact format",
	}
	cmd.AddCommand(newConvertCalldataCommand(a))
	cmd.AddCommand(newConvertEIP712Command(a))
	return cmd
}

func newConvertCalldataCommand(a *app) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "calldata <descriptor.json>",
		Short: "Convert a contract descriptor to calldata descriptors, one per chain and selector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var buffered output.Buffered
			resolved, err := a.loadAndResolve(cmd.Context(), args[0], &buffered)
			if err != nil {
				return err
			}
			sink := output.Tee{&buffered, &output.Console{Log: a.log}}
			artifacts := calldata.Convert(resolved, source, sink)
			if buffered.HasErrors() && len(artifacts) == 0 {
				return fmt.Errorf("descriptor %s could not be converted", args[0])
			}
			return writeJSON(cmd, artifacts)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "provenance URL recorded in the generated artifacts")
	return cmd
}

func newConvertEIP712Command(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "eip712 <descriptor.json>",
		Short: "Convert an EIP-712 descriptor to legacy dapp descriptors, one per chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var buffered output.Buffered
			resolved, err := a.loadAndResolve(cmd.Context(), args[0], &buffered)
			if err != nil {
				return err
			}
			sink := output.Tee{&buffered, &output.Console{Log: a.log}}
			artifacts := eip712.Convert(resolved, sink)
			if artifacts == nil {
				return fmt.Errorf("descriptor %s could not be converted", args[0])
			}
			return writeJSON(cmd, artifacts)
		},
	}
}
