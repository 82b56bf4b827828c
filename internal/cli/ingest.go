package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"r2r-mcp/internal/pipeline"
	"r2r-mcp/internal/r2r"
)

var ingestCollection string
var ingestSource string
var ingestDryRun bool

var ingestCmd = &cobra.Command{
	Use:     "ingest <glob>",
	Short:   "Upload matching files to the knowledge base",
	Long:    "Upload every file matching the glob pattern. Files are uploaded concurrently; a failed file is reported and skipped without aborting the batch.",
	Example: `r2rctl ingest "docs/*.md" --collection research-notes`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := filepath.Glob(args[0])
		if err != nil {
			return fmt.Errorf("bad glob pattern: %w", err)
		}
		if len(paths) == 0 {
			return fmt.Errorf("no files match %q", args[0])
		}

		out := cmd.OutOrStdout()
		if ingestDryRun {
			for _, path := range paths {
				fmt.Fprintf(out, "would upload %s\n", path)
			}
			fmt.Fprintf(out, "%d file(s) matched\n", len(paths))
			return nil
		}

		client, _, logger, err := newClient()
		if err != nil {
			return err
		}
		rc := pipeline.NewContext(logger, nil, nil)

		results := pipeline.RunAllTagged(cmd.Context(), rc, paths, func(ctx context.Context, path string, index int) (string, error) {
			metadata := &r2r.DocumentMetadata{
				Title:  filepath.Base(path),
				Source: ingestSource,
			}
			doc, err := client.CreateDocumentFromFile(ctx, path, metadata)
			if err != nil {
				return "", err
			}
			if ingestCollection != "" {
				if err := client.AddDocumentToCollection(ctx, ingestCollection, doc.DocumentID); err != nil {
					return "", fmt.Errorf("add to collection: %w", err)
				}
			}
			return doc.DocumentID, nil
		})

		uploaded := 0
		for i, result := range results {
			if result.Err != nil {
				fmt.Fprintf(out, "failed   %s: %v\n", paths[i], result.Err)
				continue
			}
			fmt.Fprintf(out, "uploaded %s as %s\n", paths[i], result.Value)
			uploaded++
		}

		fmt.Fprintf(out, "ingested %d/%d file(s)\n", uploaded, len(paths))
		if uploaded < len(paths) {
			return fmt.Errorf("%d file(s) failed", len(paths)-uploaded)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVarP(&ingestCollection, "collection", "c", "", "Collection ID to add uploaded documents to")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "r2rctl", "Source label recorded in document metadata")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "List matching files without uploading")
}
