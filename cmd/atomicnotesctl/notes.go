package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/atomicnotes/internal/models"
	"github.com/patric-chuzhbe/atomicnotes/internal/notes"
)

const listBodyWidth = 60

func newListCmd(flags *storageFlags) *cobra.Command {
	var (
		asJSON bool
		status string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := models.NoteStatus(status)
			if status != "" && !filter.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}

			return flags.withNotes(cmd, func(ctx context.Context, store *notes.Store) error {
				all, err := store.GetAll(ctx)
				if err != nil {
					return err
				}

				if status != "" {
					all = funk.Filter(all, func(note models.Note) bool {
						return note.Status == filter
					}).([]models.Note)
				}
				sort.SliceStable(all, func(i, j int) bool {
					return all[i].CreatedAt().After(all[j].CreatedAt())
				})

				if asJSON {
					encoder := json.NewEncoder(cmd.OutOrStdout())
					encoder.SetIndent("", "  ")
					return encoder.Encode(all)
				}

				table := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(table, "ID\tSTATUS\tCREATED\tBODY")
				for _, note := range all {
					fmt.Fprintf(table, "%s\t%s\t%s\t%s\n", note.ID, note.Status, note.DateCreated, summarize(note.Body))
				}
				return table.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print notes as JSON")
	cmd.Flags().StringVar(&status, "status", "", "only list notes with this status")

	return cmd
}

func newCreateCmd(flags *storageFlags) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "create <body>",
		Short: "Create a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			noteStatus := models.NoteStatus(status)
			if !noteStatus.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}

			return flags.withNotes(cmd, func(ctx context.Context, store *notes.Store) error {
				created, err := store.Create(ctx, models.Note{
					ID:          uuid.NewString(),
					Body:        strings.Join(args, " "),
					DateCreated: time.Now().UTC().Format(models.DateLayout),
					Status:      noteStatus,
				})
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), created.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", string(models.NoteStatusDraft), "status of the new note")

	return cmd
}

func newStatusCmd(flags *storageFlags, use, short string, status models.NoteStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withNotes(cmd, func(ctx context.Context, store *notes.Store) error {
				updated, err := store.Update(ctx, args[0], models.NotePatch{Status: &status})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", updated.ID, updated.Status)
				return nil
			})
		},
	}
}

func newDeleteCmd(flags *storageFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withNotes(cmd, func(ctx context.Context, store *notes.Store) error {
				if _, err := store.Get(ctx, args[0]); err != nil {
					return err
				}
				if err := store.Delete(ctx, args[0]); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s deleted\n", args[0])
				return nil
			})
		},
	}
}

// summarize flattens body to one line that fits the list table.
func summarize(body string) string {
	line := strings.Join(strings.Fields(body), " ")
	runes := []rune(line)
	if len(runes) <= listBodyWidth {
		return line
	}

	return string(runes[:listBodyWidth-3]) + "..."
}
