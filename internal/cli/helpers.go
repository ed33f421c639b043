package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"docchat/config"
	"docchat/internal/adapter/chunker"
	"docchat/internal/adapter/embedding"
	"docchat/internal/adapter/extract"
	"docchat/internal/adapter/fs"
	"docchat/internal/adapter/index"
	"docchat/internal/adapter/llm"
	"docchat/internal/port"
	"docchat/internal/usecase"
)

func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	e := cfg.Embedding
	switch e.Provider {
	case "openai":
		if e.BaseURL != "" {
			return embedding.NewOpenAICompatibleEmbedder(e.APIKeyEnv, e.Model, e.BaseURL)
		}
		return embedding.NewOpenAIEmbedder(e.APIKeyEnv, e.Model)
	case "deepseek":
		return embedding.NewDeepSeekEmbedder(e.APIKeyEnv, e.Model)
	case "local":
		return embedding.NewLocalEmbedder(e.Model, e.BaseURL)
	case "mock":
		return embedding.NewMockEmbedder(e.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", e.Provider)
	}
}

func newLLM(cfg *config.Config) (port.LLM, error) {
	l := cfg.LLM
	switch l.Provider {
	case "openai":
		if l.BaseURL != "" {
			return llm.NewOpenAICompatibleLLM(l.APIKeyEnv, l.Model, l.BaseURL)
		}
		return llm.NewOpenAILLM(l.APIKeyEnv, l.Model)
	case "deepseek":
		return llm.NewDeepSeekLLM(l.APIKeyEnv, l.Model)
	case "local":
		return llm.NewLocalLLM(l.Model, l.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", l.Provider)
	}
}

// stack bundles the wired collaborators of one process: every component is
// constructed once here and passed explicitly, never reached through
// ambient globals.
type stack struct {
	ingestor *usecase.Ingestor
	pipeline *usecase.Pipeline
	index    *index.MemoryIndex
	llm      port.LLM
}

func buildStack(cfg *config.Config) (*stack, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	model, err := newLLM(cfg)
	if err != nil {
		return nil, err
	}

	idx := index.NewMemoryIndex(embedder)
	chk := chunker.NewTextChunker(cfg.Chunk.Size, cfg.Chunk.Overlap)

	return &stack{
		ingestor: usecase.NewIngestor(extract.NewTextExtractor(), chk, idx),
		pipeline: usecase.NewPipeline(model, idx, cfg.Retrieve.TopK, cfg.Retrieve.DiversityWeight, logger),
		index:    idx,
		llm:      model,
	}, nil
}

// ingestPaths ingests every given path; directories are expanded through the
// include/exclude globs from config. A progress bar tracks the file count.
func ingestPaths(cfg *config.Config, ingestor *usecase.Ingestor, paths []string) error {
	var files []string
	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", p, err)
		}
		if info.IsDir() {
			found, err := walker.Walk(p)
			if err != nil {
				return fmt.Errorf("failed to walk %s: %w", p, err)
			}
			for _, f := range found {
				files = append(files, f.Path)
			}
		} else {
			files = append(files, p)
		}
	}

	if len(files) == 0 {
		return fmt.Errorf("no ingestible files found")
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	for _, f := range files {
		if _, err := ingestor.IngestFile(f, nil); err != nil {
			return fmt.Errorf("failed to ingest %s: %w", filepath.Base(f), err)
		}
		bar.Add(1)
	}

	return nil
}
