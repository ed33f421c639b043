package cli

import (
	"os"

	"github.com/spf13/cobra"

	"docchat/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Speak the embed/query protocol on stdin/stdout",
	Long: `Run the document worker: newline-delimited JSON requests on stdin,
event streams on stdout. Inbound kinds are "embed" (payload bytes) and
"query" (message history); every request ends in one "complete" or "error"
event. Intended to be driven by a host process or UI.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	st, err := buildStack(cfg)
	if err != nil {
		return err
	}

	w := worker.New(st.ingestor, st.pipeline, st.llm, logger)
	return w.Serve(os.Stdin, os.Stdout)
}
