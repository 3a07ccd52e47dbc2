package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/reef-labs/reefrag/internal/core/domain"
)

var (
	indexDocType string
	indexDocID   string
)

var indexCmd = &cobra.Command{
	Use:   "index [course-id] [file...]",
	Short: "Index documents into a course",
	Long: `Chunks, embeds, and stores the given text files under a course.
Documents shorter than the chunking minimum are skipped and stay
reachable by keyword search only.

The document ID is derived from the file name; pass --id to override it
when indexing a single file. Use "-" to read from stdin.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexDocType, "type", "t", "note", "document type (note or assignment)")
	indexCmd.Flags().StringVar(&indexDocID, "id", "", "document ID (single file only)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	courseID := args[0]
	files := args[1:]

	docType := domain.DocumentType(indexDocType)
	if !docType.IsValid() {
		return fmt.Errorf("invalid document type %q (want note or assignment)", indexDocType)
	}
	if indexDocID != "" && len(files) > 1 {
		return errors.New("--id can only be used with a single file")
	}

	for _, file := range files {
		documentID, text, err := readIndexInput(cmd, file)
		if err != nil {
			return err
		}
		if indexDocID != "" {
			documentID = indexDocID
		}

		if err := ragService.IndexDocument(cmd.Context(), documentID, docType, courseID, text); err != nil {
			return fmt.Errorf("indexing %s: %w", file, err)
		}

		indexed, err := ragService.IsIndexed(cmd.Context(), documentID)
		if err != nil {
			return err
		}
		if indexed {
			cmd.Printf("Indexed %s as %s\n", file, documentID)
		} else {
			cmd.Printf("Skipped %s (too short or no embedding server)\n", file)
		}
	}

	return nil
}

// readIndexInput loads one input file, or stdin for "-", and derives the
// document ID. Stdin input gets a generated ID.
func readIndexInput(cmd *cobra.Command, file string) (documentID, text string, err error) {
	if file == "-" {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return uuid.NewString(), string(content), nil
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", file, err)
	}

	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base)), string(content), nil
}
