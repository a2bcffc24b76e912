package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func routinesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "routines",
		Short: "List stored routines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, err := e.library(cmd.Context())
			if err != nil {
				return err
			}
			list, err := lib.ListRoutines(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tWORKOUTS\tUPDATED")
			for _, r := range list {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.ID, r.Name, r.Workouts, r.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}

func newCmd(e *env) *cobra.Command {
	var workouts []string

	c := &cobra.Command{
		Use:   "new NAME",
		Short: "Create a routine, optionally with empty workouts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := e.library(cmd.Context())
			if err != nil {
				return err
			}
			view, err := lib.CreateRoutine(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, name := range workouts {
				if _, err := lib.AddWorkout(cmd.Context(), view.ID, name); err != nil {
					return fmt.Errorf("adding workout %q: %w", name, err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), view.ID)
			return nil
		},
	}

	c.Flags().StringSliceVarP(&workouts, "workout", "w", nil, "workout to add (repeatable)")
	return c
}

func renderCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "render ID",
		Short: "Print a routine in its canonical text form",
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
			text, err := lib.Render(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
