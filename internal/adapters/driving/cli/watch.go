package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/reef-labs/reefrag/internal/adapters/driving/watch"
	"github.com/reef-labs/reefrag/internal/core/domain"
)

var watchDocType string

var watchCmd = &cobra.Command{
	Use:   "watch [course-id] [directory]",
	Short: "Keep a directory of note files indexed",
	Long: `Watches a directory and reindexes note files (.txt, .md) as they are
created or modified. Removed files are dropped from the index. Runs
until interrupted.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchDocType, "type", "t", "note", "document type (note or assignment)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	courseID, dir := args[0], args[1]

	if ragService == nil {
		return errors.New("rag service not configured")
	}

	docType := domain.DocumentType(watchDocType)
	if !docType.IsValid() {
		return fmt.Errorf("invalid document type %q (want note or assignment)", watchDocType)
	}

	// Ctrl+C cancels the context so the watcher shuts down cleanly and
	// closes the events channel.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	watcher := watch.NewWatcher(ragService, courseID, docType)
	events, err := watcher.Watch(ctx, dir)
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s (course %s), press Ctrl+C to stop\n", dir, courseID)

	for event := range events {
		switch {
		case event.Err != nil:
			cmd.Printf("  error handling %s: %v\n", event.Path, event.Err)
		case event.Deleted:
			cmd.Printf("  removed %s\n", event.DocumentID)
		default:
			cmd.Printf("  indexed %s\n", event.DocumentID)
		}
	}

	return nil
}
