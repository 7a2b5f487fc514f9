package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"brewlog/internal/atproto"
	"brewlog/internal/brewlog"
	"brewlog/internal/config"
	"brewlog/internal/display"
	"brewlog/internal/imaging"
	"brewlog/internal/models"

	"github.com/spf13/cobra"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid brew id %q", s)
	}
	return id, nil
}

func newListCmd(flags *rootFlags, cfg config.Config) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List brews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(flags, cfg, cmd.ErrOrStderr(), func(store *brewlog.Store) error {
				entries, err := store.LoadAll(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No brews yet")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDATE\tMETHOD\tTIME\tRATING\tNAME")
				for _, e := range entries {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
						e.ID, display.Date(e.Date), e.BrewMethod, display.BrewTime(e.BrewDetail.BrewTime), display.Rating(e.Rating), e.Name)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func newShowCmd(flags *rootFlags, cfg config.Config) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one brew",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(flags, cfg, cmd.ErrOrStderr(), func(store *brewlog.Store) error {
				entry, err := store.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), entry)
				}
				fmt.Fprint(cmd.OutOrStdout(), display.Summary(entry))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the entry as JSON")
	return cmd
}

type addFlags struct {
	name        string
	method      string
	date        string
	rating      float64
	image       string
	coffee      string
	origin      string
	roastLevel  string
	grind       string
	dose        float64
	water       float64
	brewTime    int
	temperature float64
	tastes      []string
}

// applyTastes parses name=intensity pairs such as "Fruity=3".
func applyTastes(rating *models.TasteRating, pairs []string) error {
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("taste %q must be name=intensity", pair)
		}
		c, err := models.ParseTasteCategory(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("taste %q: %w", pair, err)
		}
		if err := rating.Set(c, n); err != nil {
			return err
		}
	}
	return nil
}

func (f addFlags) entry() (models.BrewLogEntry, error) {
	method, err := models.ParseBrewMethod(f.method)
	if err != nil {
		return models.BrewLogEntry{}, err
	}
	e := models.BrewLogEntry{
		Name:       f.name,
		BrewMethod: method,
		Image:      f.image,
		Rating:     f.rating,
		CoffeeBeanDetail: models.CoffeeBeanDetail{
			CoffeeName: f.coffee,
			Origin:     f.origin,
			RoastLevel: f.roastLevel,
		},
		BrewDetail: models.BrewDetail{
			GrindSize:   f.grind,
			BeanWeight:  f.dose,
			WaterAmount: f.water,
			BrewTime:    f.brewTime,
			Temperature: f.temperature,
		},
	}
	e.BrewDetail.Ratio = e.BrewDetail.ComputedRatio()
	if f.date != "" {
		d, err := time.Parse("2006-01-02", f.date)
		if err != nil {
			return models.BrewLogEntry{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", f.date)
		}
		e.Date = models.Date{Time: d}
	}
	if err := applyTastes(&e.TasteRating, f.tastes); err != nil {
		return models.BrewLogEntry{}, err
	}
	return e, nil
}

func newAddCmd(flags *rootFlags, cfg config.Config) *cobra.Command {
	var af addFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new brew",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := af.entry()
			if err != nil {
				return err
			}
			return withStore(flags, cfg, cmd.ErrOrStderr(), func(store *brewlog.Store) error {
				stored, err := store.Add(cmd.Context(), entry)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added brew %d\n", stored.ID)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&af.name, "name", "", "Name of the brew")
	f.StringVar(&af.method, "method", "", "Brew method: "+methodList())
	f.StringVar(&af.date, "date", "", "Brew date (YYYY-MM-DD), defaults to today")
	f.Float64Var(&af.rating, "rating", 0, "Overall rating 0-5")
	f.StringVar(&af.image, "image", "", "Remote photo URL")
	f.StringVar(&af.coffee, "coffee", "", "Coffee name")
	f.StringVar(&af.origin, "origin", "", "Coffee origin")
	f.StringVar(&af.roastLevel, "roast", "", "Roast level")
	f.StringVar(&af.grind, "grind", "", "Grind size")
	f.Float64Var(&af.dose, "dose", 0, "Coffee dose in grams")
	f.Float64Var(&af.water, "water", 0, "Water in ml")
	f.IntVar(&af.brewTime, "time", 0, "Brew time in seconds")
	f.Float64Var(&af.temperature, "temp", 0, "Water temperature in celsius")
	f.StringArrayVar(&af.tastes, "taste", nil, "Taste intensity as name=0..3 (may be repeated)")
	cmd.MarkFlagRequired("method")
	return cmd
}

func methodList() string {
	names := make([]string, len(models.BrewMethods))
	for i, m := range models.BrewMethods {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func newDeleteCmd(flags *rootFlags, cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a brew and its stored photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(flags, cfg, cmd.ErrOrStderr(), func(store *brewlog.Store) error {
				res, err := store.DeleteByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !res.Deleted {
					fmt.Fprintf(out, "No brew with id %d\n", id)
					return nil
				}
				fmt.Fprintf(out, "Deleted brew %d (photo cleanup: %s)\n", id, res.Cleanup)
				if res.CleanupErr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", res.CleanupErr)
				}
				return nil
			})
		},
	}
}

func newPhotoCmd(flags *rootFlags, cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "photo <id> <file>",
		Short: "Attach a photo to a brew",
		Long:  "Converts the image to JPEG, copies it into the documents directory and points the brew at it.\nThe photo it replaces is removed.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(flags, cfg, cmd.ErrOrStderr(), func(store *brewlog.Store) error {
				if _, err := store.Get(cmd.Context(), id); err != nil {
					return err
				}
				path, picked, err := store.PickAndStoreImage(cmd.Context(), imaging.StaticPicker{URI: args[1]}, id)
				var persistErr *brewlog.ImagePersistError
				switch {
				case err == nil:
				case errors.As(err, &persistErr) && path != "":
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: photo not persisted, using %s: %v\n", path, err)
				default:
					return err
				}
				if !picked {
					return errors.New("no photo selected")
				}
				if _, err := store.AttachImage(cmd.Context(), id, path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored photo %s\n", path)
				return nil
			})
		},
	}
}

func newExportCmd(flags *rootFlags, cfg config.Config) *cobra.Command {
	var did string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export brews as AT Protocol records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := atproto.ParseDID(did)
			if err != nil {
				return err
			}
			return withStore(flags, cfg, cmd.ErrOrStderr(), func(store *brewlog.Store) error {
				entries, err := store.LoadAll(cmd.Context())
				if err != nil {
					return err
				}
				records, skipped := atproto.ExportEntries(parsed, entries)
				for _, sk := range skipped {
					fmt.Fprintf(cmd.ErrOrStderr(), "Skipped brew %d: %s\n", sk.ID, sk.Reason)
				}
				return printJSON(cmd.OutOrStdout(), records)
			})
		},
	}
	cmd.Flags().StringVar(&did, "did", "", "DID that will own the records")
	cmd.MarkFlagRequired("did")
	return cmd
}
