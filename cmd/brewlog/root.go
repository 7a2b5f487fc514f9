package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"brewlog/internal/brewlog"
	"brewlog/internal/config"
	"brewlog/internal/database/sqlite"
	"brewlog/internal/files"
	"brewlog/internal/imaging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootFlags are shared by every subcommand
type rootFlags struct {
	dbPath  string
	docsDir string
	verbose bool
}

func newRootCmd(cfg config.Config) *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "brewlog",
		Short:         "brewlog keeps a local journal of coffee brews",
		Long:          "brewlog records brewing sessions, their photos and tasting-wheel ratings in a local SQLite database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.dbPath, "db", cfg.DBPath, "Path to SQLite database")
	pf.StringVar(&flags.docsDir, "docs", cfg.DocumentsDir, "Directory for stored brew photos")
	pf.BoolVar(&flags.verbose, "verbose", false, "Log store activity to stderr")

	root.AddCommand(
		newListCmd(flags, cfg),
		newShowCmd(flags, cfg),
		newAddCmd(flags, cfg),
		newDeleteCmd(flags, cfg),
		newPhotoCmd(flags, cfg),
		newExportCmd(flags, cfg),
		newWheelCmd(flags, cfg),
	)
	return root
}

// withStore opens the configured database and documents directory for the
// duration of run.
func withStore(flags *rootFlags, cfg config.Config, errOut io.Writer, run func(*brewlog.Store) error) error {
	if dir := filepath.Dir(flags.dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create database dir: %w", err)
		}
	}
	kv, err := sqlite.NewSQLiteStore(flags.dbPath)
	if err != nil {
		return err
	}
	defer kv.Close()

	fs, err := files.NewOSFileSystem(flags.docsDir)
	if err != nil {
		return err
	}

	logger := zerolog.Nop()
	if flags.verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: errOut}).With().Timestamp().Logger()
	}

	store := brewlog.New(kv, fs,
		brewlog.WithPlaceholder(cfg.PlaceholderImage),
		brewlog.WithNormalizer(imaging.JPEGNormalizer{ScratchDir: filepath.Join(os.TempDir(), "brewlog")}),
		brewlog.WithLogger(logger),
	)
	return run(store)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
