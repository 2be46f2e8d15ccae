package main

import (
	"fmt"
	"io"

	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/dis"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var disCmd = &cobra.Command{
	Use:     "dis FILE",
	Short:   "Disassemble a bytecode program",
	Args:    cobra.ExactArgs(1),
	PreRunE: bindFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := bytecode.ReadFile(args[0])
		if err != nil {
			return err
		}
		return disassemble(cmd.OutOrStdout(), prog.Main, viper.GetString("func"))
	},
}

func init() {
	disCmd.Flags().String("func", "", "Function to disassemble")
}

func disassemble(w io.Writer, main *bytecode.Code, funcName string) error {
	if funcName == "" {
		dis.PrintCode(main, w)
		return nil
	}
	fn := findFunction(main, funcName, map[*bytecode.Code]bool{})
	if fn == nil {
		return fmt.Errorf("function %q not found", funcName)
	}
	dis.Print(dis.Disassemble(fn.Code()), w)
	return nil
}

func findFunction(code *bytecode.Code, name string, seen map[*bytecode.Code]bool) *bytecode.Function {
	if code == nil || seen[code] {
		return nil
	}
	seen[code] = true
	for _, fn := range code.Functions() {
		if fn.Name() == name {
			return fn
		}
		if found := findFunction(fn.Code(), name, seen); found != nil {
			return found
		}
	}
	return nil
}
