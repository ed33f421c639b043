package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"docchat/config"
	"docchat/internal/adapter/store"
	"docchat/internal/domain"
)

var (
	chatFiles   []string
	chatNoSave  bool
	chatForget  bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat interactively about your documents",
	Long: `Start an interactive chat session. Message history persists across
sessions in .docchat/history.db; the document index is rebuilt per session.

Examples:
  docchat chat -f manual.txt
  docchat chat -f docs/ --forget    # start with a clean transcript`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringSliceVarP(&chatFiles, "file", "f", nil, "file or directory to ingest (repeatable)")
	chatCmd.Flags().BoolVar(&chatNoSave, "no-save", false, "do not persist the transcript")
	chatCmd.Flags().BoolVar(&chatForget, "forget", false, "clear the persisted transcript before starting")
}

func runChat(cmd *cobra.Command, args []string) error {
	st, err := buildStack(cfg)
	if err != nil {
		return err
	}

	if len(chatFiles) > 0 {
		if err := ingestPaths(cfg, st.ingestor, chatFiles); err != nil {
			return err
		}
	}

	var history []domain.Message
	var hs *store.BoltHistoryStore

	if !chatNoSave {
		if err := config.EnsureDataDir(rootDir); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		hs, err = store.NewBoltHistoryStore(config.HistoryDBPath(rootDir))
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer hs.Close()

		if chatForget {
			if err := hs.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
		}

		history, err = hs.ListMessages()
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
	}

	fmt.Println("docchat - type your question, or /quit to exit")
	if len(history) > 0 {
		fmt.Printf("(resuming a transcript of %d messages)\n", len(history))
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		userMsg := domain.Message{Role: domain.RoleUser, Content: line}
		history = append(history, userMsg)

		conv := &domain.Conversation{Messages: history}
		answer, err := st.pipeline.Answer(conv)
		if err != nil {
			// The session survives a failed invocation; drop the turn.
			history = history[:len(history)-1]
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		history = conv.Messages
		fmt.Println(answer.Content)

		if hs != nil {
			if err := hs.AppendMessage(userMsg); err != nil {
				logger.Warn("failed to persist message", "error", err)
			}
			if err := hs.AppendMessage(answer); err != nil {
				logger.Warn("failed to persist message", "error", err)
			}
		}
	}

	return scanner.Err()
}
