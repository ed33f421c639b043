package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docchat/internal/domain"
)

var askFiles []string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question about your documents",
	Long: `Ingest the given documents and answer one question about them.

Examples:
  docchat ask -f manual.txt "how do I reset the device?"
  docchat ask -f docs/ "what are the system requirements?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringSliceVarP(&askFiles, "file", "f", nil, "file or directory to ingest (repeatable)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	st, err := buildStack(cfg)
	if err != nil {
		return err
	}

	if len(askFiles) > 0 {
		if err := ingestPaths(cfg, st.ingestor, askFiles); err != nil {
			return err
		}
	}

	conv := &domain.Conversation{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: question}},
	}

	answer, err := st.pipeline.Answer(conv)
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	fmt.Println(answer.Content)
	return nil
}
