package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patric-chuzhbe/atomicnotes/internal/config"
	"github.com/patric-chuzhbe/atomicnotes/internal/logger"
	"github.com/patric-chuzhbe/atomicnotes/internal/models"
	"github.com/patric-chuzhbe/atomicnotes/internal/notes"
	"github.com/patric-chuzhbe/atomicnotes/internal/storage"
)

// storageFlags mirror the storage flags of the server.
type storageFlags struct {
	configFile  string
	fileStorage string
	databaseDSN string
	redisAddr   string
	logLevel    string
}

// args renders the flags that were set in the syntax config.New parses.
func (f *storageFlags) args() []string {
	var args []string
	for name, value := range map[string]string{
		"-c": f.configFile,
		"-f": f.fileStorage,
		"-d": f.databaseDSN,
		"-r": f.redisAddr,
		"-l": f.logLevel,
	} {
		if value != "" {
			args = append(args, name, value)
		}
	}

	return args
}

// openNotes loads the configuration and opens the note store on top of the
// configured storage. The returned func closes the storage.
func (f *storageFlags) openNotes(ctx context.Context) (*notes.Store, func() error, error) {
	cfg, err := config.New(config.WithArgs(f.args()))
	if err != nil {
		return nil, nil, fmt.Errorf("in cmd/atomicnotesctl/root.go/openNotes(): error while `config.New()` calling: %w", err)
	}

	if f.logLevel != "" {
		if err := logger.Init(cfg.LogLevel); err != nil {
			return nil, nil, err
		}
	}

	namespace, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("in cmd/atomicnotesctl/root.go/openNotes(): error while `storage.Open()` calling: %w", err)
	}

	return notes.New(namespace), namespace.Close, nil
}

// withNotes runs fn against an open note store and closes it afterwards.
func (f *storageFlags) withNotes(cmd *cobra.Command, fn func(ctx context.Context, store *notes.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, closeStorage, err := f.openNotes(ctx)
	if err != nil {
		return err
	}

	fnErr := fn(ctx, store)
	if err := closeStorage(); err != nil && fnErr == nil {
		return fmt.Errorf("closing the storage: %w", err)
	}

	return fnErr
}

func newRootCmd() *cobra.Command {
	flags := &storageFlags{}

	rootCmd := &cobra.Command{
		Use:          "atomicnotesctl",
		Short:        "Manage atomic notes in the site storage",
		SilenceUsage: true,
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&flags.configFile, "config", "c", "", "JSON or YAML configuration file")
	persistent.StringVarP(&flags.fileStorage, "file-storage-path", "f", "", "JSON file with the key-value storage")
	persistent.StringVarP(&flags.databaseDSN, "database-dsn", "d", "", "PostgreSQL connection string")
	persistent.StringVarP(&flags.redisAddr, "redis-address", "r", "", "Redis address")
	persistent.StringVarP(&flags.logLevel, "log-level", "l", "", "log to stderr at this level")

	rootCmd.AddCommand(
		newListCmd(flags),
		newCreateCmd(flags),
		newStatusCmd(flags, "publish", "Make a note visible to everyone", models.NoteStatusPublished),
		newStatusCmd(flags, "unpublish", "Hide a note from everyone but the admin", models.NoteStatusDraft),
		newDeleteCmd(flags),
	)

	return rootCmd
}
