package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/benlang/ben/builtins"
	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/debug"
	"github.com/benlang/ben/errz"
	"github.com/benlang/ben/vm"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug FILE",
	Short: "Step through a bytecode program interactively",
	Long: `Step through a program one instruction at a time.

Keys:
  space, enter, s  step forward
  b                step back
  c                continue to the end
  r                rewind to the start
  p                print a JSON snapshot of the current state
  q, ctrl+c        quit`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isTerminalIO() {
			return errors.New("debug requires an interactive terminal")
		}
		prog, err := loadProgram(args[0])
		if err != nil {
			return err
		}
		m := vm.New(vm.WithLogger(newLogger()))
		d := newDebugger(cmd.OutOrStdout(), prog, debug.NewSession(m, vm.NewState(prog.Source, prog.Main, builtins.Builtins())))
		d.render()
		return keyboard.Listen(func(key keys.Key) (stop bool, err error) {
			return d.handle(cmd.Context(), key)
		})
	},
}

type debugger struct {
	out     io.Writer
	prog    *bytecode.Program
	session *debug.Session
	bold    *color.Color
	dim     *color.Color
}

func newDebugger(out io.Writer, prog *bytecode.Program, session *debug.Session) *debugger {
	return &debugger{
		out:     out,
		prog:    prog,
		session: session,
		bold:    color.New(color.Bold),
		dim:     color.New(color.FgHiBlack),
	}
}

// handle applies one key press and reports whether to stop listening.
func (d *debugger) handle(ctx context.Context, key keys.Key) (bool, error) {
	switch key.Code {
	case keys.CtrlC, keys.Escape:
		return true, nil
	case keys.Space, keys.Enter:
		return false, d.command(ctx, 's')
	case keys.RuneKey:
		if len(key.Runes) == 0 {
			return false, nil
		}
		if key.Runes[0] == 'q' {
			return true, nil
		}
		return false, d.command(ctx, key.Runes[0])
	}
	return false, nil
}

func (d *debugger) command(ctx context.Context, r rune) error {
	switch r {
	case 's':
		if _, ok := d.session.Step(); !ok {
			fmt.Fprintln(d.out, d.dim.Sprint("program has finished; r to rewind"))
			return nil
		}
	case 'b':
		if _, err := d.session.Back(); err != nil {
			fmt.Fprintln(d.out, d.dim.Sprint(err.Error()))
			return nil
		}
	case 'c':
		if _, err := d.session.Continue(ctx); err != nil {
			return err
		}
	case 'r':
		d.session.Rewind()
	case 'p':
		data, err := getOutputJSON(debug.TakeSnapshot(d.session.State(), debug.WithoutRootScope()))
		if err != nil {
			return err
		}
		fmt.Fprintln(d.out, string(data))
		return nil
	default:
		return nil
	}
	d.render()
	return nil
}

func (d *debugger) render() {
	renderState(d.out, d.session.Position(), d.session.State(), d.prog.Source, d.bold)
}

// renderState writes a short summary of st: the last instruction, the
// innermost frame, the operand stack and any output or error.
func renderState(w io.Writer, position int, st *vm.State, source string, bold *color.Color) {
	var sb strings.Builder
	header := fmt.Sprintf("[%d]", position)
	if instr := st.CurrentInstruction(); instr != nil {
		header += " " + instr.String()
		if snippet := instr.Location().Slice(source); snippet != "" {
			header += fmt.Sprintf("  (%s)", snippet)
		}
	} else {
		header += " start"
	}
	sb.WriteString(bold.Sprint(header))
	sb.WriteString("\n")

	if frame, ok := st.Frame(); ok {
		fmt.Fprintf(&sb, "  frame: %s @%d scope %d depth %d\n",
			frame.Code.Name(), frame.Pointer, frame.Scope, st.CallDepth())
	}
	entries := st.Stack()
	values := make([]string, len(entries))
	for i, entry := range entries {
		values[i] = entry.Value.Inspect()
	}
	fmt.Fprintf(&sb, "  stack: [%s]\n", strings.Join(values, ", "))
	if out := st.Output(); len(out) > 0 {
		fmt.Fprintf(&sb, "  output: %s\n", out[len(out)-1])
	}
	switch {
	case st.IsCrashed():
		sb.WriteString(errz.NewFormatter(!color.NoColor).Format(st.Exception(), source))
	case st.IsComplete():
		sb.WriteString("  complete\n")
	}
	io.WriteString(w, sb.String())
}
