package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsFiles []string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Ingest documents and report index statistics",
	Long: `Ingest the given documents and print how they chunked and indexed,
without asking a question. Useful for tuning chunk size and overlap.

Examples:
  docchat stats -f manual.txt
  docchat stats -f docs/`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringSliceVarP(&statsFiles, "file", "f", nil, "file or directory to ingest (repeatable)")
}

func runStats(cmd *cobra.Command, args []string) error {
	if len(statsFiles) == 0 {
		return fmt.Errorf("no files given; use -f")
	}

	st, err := buildStack(cfg)
	if err != nil {
		return err
	}

	if err := ingestPaths(cfg, st.ingestor, statsFiles); err != nil {
		return err
	}

	stats := st.index.Stats()
	fmt.Printf("Documents:      %d\n", stats.TotalDocs)
	fmt.Printf("Chunks:         %d\n", stats.TotalChunks)
	fmt.Printf("Avg chunk size: %.1f chars\n", stats.AvgChunkLen)
	return nil
}
