package cli

import (
	"fmt"
	"os"

	"github.com/claude/fitlog/internal/export"
	"github.com/claude/fitlog/internal/ingest/alpha"
	"github.com/spf13/cobra"
)

func importCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import ID FILE",
		Short: "Import an Alpha Progression CSV export into a routine",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			lib, err := e.library(cmd.Context())
			if err != nil {
				return err
			}
			res, err := alpha.NewProvider(lib, e.log).Ingest(cmd.Context(), id, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sessions: %d, workouts added: %d, skipped: %d, exercises added: %d\n",
				res.SessionsReceived, res.WorkoutsAdded, res.WorkoutsSkipped, res.ExercisesAdded)
			return nil
		},
	}
}

func exportCmd(e *env) *cobra.Command {
	var out string

	c := &cobra.Command{
		Use:   "export ID",
		Short: "Write a routine to an .xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			lib, err := e.library(cmd.Context())
			if err != nil {
				return err
			}
			view, err := lib.View(cmd.Context(), id)
			if err != nil {
				return err
			}
			if out == "" {
				out = export.SheetName(view.Name) + ".xlsx"
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.WriteRoutine(f, view); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	c.Flags().StringVarP(&out, "output", "o", "", "output file (default <routine name>.xlsx)")
	return c
}
