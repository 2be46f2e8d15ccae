package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/benlang/ben/internal/table"
	"github.com/benlang/ben/trace"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var traceCmd = &cobra.Command{
	Use:     "trace DB",
	Short:   "List recorded trace sessions, or the events of one session",
	Args:    cobra.ExactArgs(1),
	PreRunE: bindFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := trace.Open(ctx, args[0])
		if err != nil {
			return err
		}
		defer store.Close()
		w := cmd.OutOrStdout()
		format := viper.GetString("output")
		if id := viper.GetString("session"); id != "" {
			return printEvents(ctx, w, store, id, format)
		}
		return printSessions(ctx, w, store, format)
	},
}

func init() {
	traceCmd.Flags().String("session", "", "Show the events of this session")
	traceCmd.Flags().StringP("output", "o", "", "Output format: json or text")
}

func printSessions(ctx context.Context, w io.Writer, store *trace.Store, format string) error {
	sessions, err := store.Sessions(ctx)
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(w, sessions)
	}
	var rows [][]string
	for _, s := range sessions {
		rows = append(rows, []string{
			s.ID,
			s.Program,
			s.Started.Local().Format(time.DateTime),
			strconv.Itoa(s.Steps),
			strconv.Itoa(s.Events),
			s.Outcome,
		})
	}
	table.NewTable(w).
		WithHeader([]string{"SESSION", "PROGRAM", "STARTED", "STEPS", "EVENTS", "OUTCOME"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignLeft,
			table.AlignLeft,
			table.AlignLeft,
			table.AlignRight,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithRows(rows).
		Render()
	return nil
}

func printEvents(ctx context.Context, w io.Writer, store *trace.Store, id, format string) error {
	if _, err := store.Session(ctx, id); err != nil {
		return err
	}
	events, err := store.Events(ctx, id)
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(w, events)
	}
	var rows [][]string
	for _, e := range events {
		rows = append(rows, []string{
			strconv.Itoa(e.Step),
			string(e.Kind),
			e.Name,
			fmt.Sprintf("%d-%d", e.SpanStart, e.SpanEnd),
			strconv.Itoa(e.StackDepth),
			strconv.Itoa(e.FrameDepth),
			e.Detail,
		})
	}
	table.NewTable(w).
		WithHeader([]string{"STEP", "KIND", "NAME", "SPAN", "STACK", "FRAMES", "DETAIL"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignLeft,
			table.AlignRight,
			table.AlignRight,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithRows(rows).
		Render()
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := getOutputJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
