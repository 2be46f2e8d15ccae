package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/object"
	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// errCrashed is returned by commands whose program crashed. The error has
// already been rendered, so main only sets the exit status.
var errCrashed = errors.New("program crashed")

var red = color.New(color.FgRed).SprintFunc()

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func isTerminalIO() bool {
	stdin := os.Stdin.Fd()
	stdout := os.Stdout.Fd()
	inTerm := isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
	outTerm := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	return inTerm && outTerm
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags() {
	if viper.GetBool("no-color") {
		color.NoColor = true
	}
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: color.NoColor}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// loadProgram reads and validates a bytecode file.
func loadProgram(path string) (*bytecode.Program, error) {
	prog, err := bytecode.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := bytecode.Validate(prog.Main); err != nil {
		return nil, fmt.Errorf("invalid bytecode in %s: %w", path, err)
	}
	return prog, nil
}

var outputFormatsCompletion = []string{"json", "text"}

func getOutput(result object.Value, format string) (string, error) {
	switch strings.ToLower(format) {
	case "":
		// With an unspecified format, print plain values as JSON and
		// everything else by its representation.
		native := result.Interface()
		if native == nil || object.IsInvokable(result) {
			return result.Inspect(), nil
		}
		output, err := getOutputJSON(native)
		if err != nil {
			return result.Inspect(), nil
		}
		return string(output), nil
	case "json":
		if object.IsInvokable(result) {
			return "", fmt.Errorf("cannot encode %s as json", result.Type())
		}
		output, err := getOutputJSON(result.Interface())
		if err != nil {
			return "", err
		}
		return string(output), nil
	case "text":
		if s, ok := result.(*object.String); ok {
			return s.Value(), nil
		}
		return result.Inspect(), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

func getOutputJSON(v any) ([]byte, error) {
	if color.NoColor {
		return json.MarshalIndent(v, "", "  ")
	}
	return prettyjson.Marshal(v)
}
