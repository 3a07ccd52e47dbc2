package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove indexed material",
	Long:  `Removes documents, whole courses, or the entire index.`,
}

var deleteDocumentCmd = &cobra.Command{
	Use:   "document [doc-id]",
	Short: "Remove one document from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteDocument,
}

var deleteCourseCmd = &cobra.Command{
	Use:   "course [course-id]",
	Short: "Remove all of a course's documents from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteCourse,
}

var deleteAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Wipe the entire index",
	Args:  cobra.NoArgs,
	RunE:  runDeleteAll,
}

func init() {
	deleteCmd.AddCommand(deleteDocumentCmd)
	deleteCmd.AddCommand(deleteCourseCmd)
	deleteCmd.AddCommand(deleteAllCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runDeleteDocument(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	if err := ragService.DeleteDocument(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}

func runDeleteCourse(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	if err := ragService.DeleteCourse(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting course: %w", err)
	}
	cmd.Printf("Deleted course %s\n", args[0])
	return nil
}

func runDeleteAll(cmd *cobra.Command, _ []string) error {
	if vectorStore == nil {
		return errors.New("vector store not configured")
	}

	if err := vectorStore.DeleteAll(cmd.Context()); err != nil {
		return fmt.Errorf("deleting all records: %w", err)
	}
	cmd.Println("Deleted all indexed material")
	return nil
}
