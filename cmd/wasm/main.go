//go:build js && wasm

package main

import (
	"encoding/json"
	"os"
	"syscall/js"

	"docchat/internal/adapter/chunker"
	"docchat/internal/adapter/embedding"
	"docchat/internal/adapter/extract"
	"docchat/internal/adapter/index"
	"docchat/internal/adapter/llm"
	"docchat/internal/usecase"
	"docchat/internal/worker"
)

// Browser entry point: the host page calls docchatInit once with its
// OpenAI-compatible endpoint, then streams protocol requests through
// docchatHandle. Events flow back through the provided callback.

var wrk *worker.Worker

func main() {
	c := make(chan struct{})

	js.Global().Set("docchatInit", js.FuncOf(initWorker))
	js.Global().Set("docchatHandle", js.FuncOf(handleRequest))

	<-c
}

func initWorker(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return makeError("usage: docchatInit(baseURL, chatModel, embedModel, [apiKey])")
	}

	baseURL := args[0].String()
	chatModel := args[1].String()
	embedModel := args[2].String()

	apiKey := "local"
	if len(args) > 3 {
		apiKey = args[3].String()
	}
	os.Setenv("DOCCHAT_API_KEY", apiKey)

	embedder, err := embedding.NewOpenAICompatibleEmbedder("DOCCHAT_API_KEY", embedModel, baseURL)
	if err != nil {
		return makeError("embedder setup failed: " + err.Error())
	}

	model, err := llm.NewOpenAICompatibleLLM("DOCCHAT_API_KEY", chatModel, baseURL)
	if err != nil {
		return makeError("llm setup failed: " + err.Error())
	}

	idx := index.NewMemoryIndex(embedder)
	chk := chunker.NewTextChunker(500, 50)
	ingestor := usecase.NewIngestor(extract.NewTextExtractor(), chk, idx)
	pipeline := usecase.NewPipeline(model, idx, 10, 0.75, nil)

	wrk = worker.New(ingestor, pipeline, model, nil)

	return makeResult(map[string]interface{}{"success": true})
}

func handleRequest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: docchatHandle(requestJSON, onEvent)")
	}
	if wrk == nil {
		return makeError("worker not initialized: call docchatInit first")
	}

	raw := args[0].String()
	onEvent := args[1]

	emit := func(ev worker.Event) {
		data, _ := json.Marshal(ev)
		onEvent.Invoke(string(data))
	}

	var req worker.Request
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		emit(worker.Event{Type: worker.KindError, Error: "malformed request: " + err.Error()})
		return makeResult(map[string]interface{}{"accepted": false})
	}

	// Handle off the event loop; network calls must not block the JS thread.
	go wrk.Handle(req, emit)

	return makeResult(map[string]interface{}{"accepted": true})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
