package main

import (
	"fmt"
	"text/tabwriter"

	"brewlog/internal/brewlog"
	"brewlog/internal/config"
	"brewlog/internal/models"
	"brewlog/internal/tastewheel"

	"github.com/spf13/cobra"
)

func newWheelCmd(flags *rootFlags, cfg config.Config) *cobra.Command {
	wheelCmd := &cobra.Command{
		Use:   "wheel",
		Short: "Work with the tasting wheel",
	}

	var radius float64
	wheelCmd.PersistentFlags().Float64Var(&radius, "radius", cfg.WheelRadius, "Wheel radius")

	var dx, dy float64
	var entryID int64
	hitCmd := &cobra.Command{
		Use:   "hit",
		Short: "Classify a tap at offset (dx, dy) from the wheel centre",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wheel, err := tastewheel.New(radius)
			if err != nil {
				return err
			}
			hit, ok := wheel.HitTest(dx, dy)
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "Outside the wheel")
				return nil
			}
			group, _, _ := tastewheel.GroupOf(hit.Category)
			fmt.Fprintf(out, "%s (%s) intensity %d\n", hit.Category, group.Name, hit.Ring)

			if entryID == 0 {
				return nil
			}
			return withStore(flags, cfg, cmd.ErrOrStderr(), func(store *brewlog.Store) error {
				_, err := store.Modify(cmd.Context(), entryID, func(e *models.BrewLogEntry) error {
					return hit.Apply(&e.TasteRating)
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Updated brew %d\n", entryID)
				return nil
			})
		},
	}
	hitCmd.Flags().Float64Var(&dx, "dx", 0, "Horizontal offset from the centre")
	hitCmd.Flags().Float64Var(&dy, "dy", 0, "Vertical offset from the centre")
	hitCmd.Flags().Int64Var(&entryID, "entry", 0, "Brew to apply the hit to")

	var showEntry int64
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the wheel segments, filled from a brew when given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wheel, err := tastewheel.New(radius)
			if err != nil {
				return err
			}
			render := func(rating models.TasteRating) error {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "GROUP\tCATEGORY\tSTART\tEND\tINTENSITY")
				for _, seg := range wheel.Layout(rating) {
					fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\t%d\n", seg.Group, seg.Category, seg.Start, seg.End, seg.Value)
				}
				return tw.Flush()
			}
			if showEntry == 0 {
				return render(models.TasteRating{})
			}
			return withStore(flags, cfg, cmd.ErrOrStderr(), func(store *brewlog.Store) error {
				entry, err := store.Get(cmd.Context(), showEntry)
				if err != nil {
					return err
				}
				return render(entry.TasteRating)
			})
		},
	}
	showCmd.Flags().Int64Var(&showEntry, "entry", 0, "Brew whose taste rating fills the wheel")

	wheelCmd.AddCommand(hitCmd, showCmd)
	return wheelCmd
}
