package main

import (
	"fmt"

	"github.com/benlang/ben/bytecode"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert IN OUT",
	Short: "Convert bytecode between JSON and CBOR",
	Long:  "Convert bytecode between encodings. The format of each file is chosen by its extension, .json or .cbor.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := bytecode.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := bytecode.WriteFile(args[1], prog); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", args[1])
		return nil
	},
}
