// Package simpletool implements the single-shot tool runner (C10): parse
// and validate a request, resolve a model, assemble the prompt (optional
// history plus fresh file content), call the resolved provider once, and
// either return the response or append it to an existing thread.
package simpletool

import (
	"context"
	"fmt"
	"time"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/budget"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/convo"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/history"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/providers"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/registry"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/toolbase"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/zerr"
)

// Request is the normalized input a simple tool hands the runner, after
// its own schema-specific parsing has produced a single assembled prompt.
type Request struct {
	ToolName       string
	Prompt         string
	SystemPrompt   string
	ModelName      string // "" or "auto" triggers category-based fallback
	Category       models.ToolCategory
	Temperature    float64
	HasTemperature bool
	ThinkingMode   models.ThinkingMode
	Files          []string
	Images         []string
	ContinuationID string
}

// Response is the envelope returned to the MCP host.
type Response struct {
	Content        string
	ModelName      string
	ProviderKind   models.ProviderKind
	ContinuationID string
	Warnings       []string
	Usage          providers.Usage
}

// Deps bundles the shared infrastructure every simple tool runs against.
type Deps struct {
	Registry *registry.Registry
	Store    *convo.Store
}

// Run executes the seven-step simple-tool flow.
func Run(ctx context.Context, deps Deps, req Request) (Response, error) {
	if err := toolbase.ValidateAbsolutePaths(req.Files); err != nil {
		return Response{}, err
	}
	if err := toolbase.ValidateImagePaths(req.Images); err != nil {
		return Response{}, err
	}

	modelName := req.ModelName
	if modelName == "" || modelName == "auto" {
		fallback, ok := deps.Registry.PreferredFallback(req.Category)
		if !ok {
			return Response{}, zerr.New(zerr.CodeModelUnavailable, "no provider is available for the requested category", nil)
		}
		modelName = fallback
	}

	provider, kind, ok := deps.Registry.GetProviderForModel(modelName)
	if !ok {
		return Response{}, zerr.ModelUnavailable(modelName, availableModelNames(deps.Registry))
	}
	cap, _ := provider.Capabilities(modelName)

	var warnings []string
	warnings = append(warnings, toolbase.ValidateImages(req.Images, cap)...)
	effectiveTemp, tempWarning := toolbase.ValidateTemperature(req.Temperature, req.HasTemperature, cap)
	if tempWarning != "" {
		warnings = append(warnings, tempWarning)
	}

	var thread *convo.Thread
	if req.ContinuationID != "" {
		thread = deps.Store.GetThread(req.ContinuationID)
		if thread == nil {
			return Response{}, zerr.ThreadExpired(req.ContinuationID)
		}
	}

	var historyText string
	historyFileTokens := 0
	if thread != nil {
		res := history.Build(deps.Store, thread, cap)
		historyText = res.Text
		historyFileTokens = res.FileTokensUsed
	}

	fileResult, err := budget.PrepareFileContent(req.Files, deps.Store, thread, cap, historyFileTokens, "referenced files")
	if err != nil {
		return Response{}, err
	}

	prompt := assemblePrompt(historyText, fileResult.Text, req.Prompt)
	if err := toolbase.CheckPromptSize(prompt); err != nil {
		return Response{}, err
	}

	images := make([]providers.Image, 0, len(req.Images))
	for _, p := range req.Images {
		images = append(images, providers.Image{Path: p})
	}

	if err := deps.Registry.Wait(ctx, kind); err != nil {
		return Response{}, err
	}

	start := time.Now()
	genResp, genErr := provider.Generate(ctx, providers.GenerationRequest{
		Prompt:          prompt,
		ModelName:       modelName,
		SystemPrompt:    req.SystemPrompt,
		Temperature:     effectiveTemp,
		MaxOutputTokens: cap.MaxOutputTokens,
		ThinkingMode:    req.ThinkingMode,
		Images:          images,
	})
	deps.Registry.RecordCall(kind, time.Since(start), genErr)
	if genErr != nil {
		return Response{}, genErr
	}

	if w, ok := genResp.Metadata["warnings"].([]string); ok {
		warnings = append(warnings, w...)
	}

	continuationID := req.ContinuationID
	if thread == nil {
		continuationID = deps.Store.CreateThread(req.ToolName, nil, "")
		thread = deps.Store.GetThread(continuationID)
	}
	if thread != nil {
		deps.Store.AddTurn(continuationID, "user", req.Prompt, fileResult.ActuallyIncluded, req.Images, req.ToolName, string(kind), modelName, nil)
		deps.Store.AddTurn(continuationID, "assistant", genResp.Content, nil, nil, req.ToolName, string(kind), modelName, genResp.Metadata)
	}

	return Response{
		Content:        genResp.Content,
		ModelName:      modelName,
		ProviderKind:   kind,
		ContinuationID: continuationID,
		Warnings:       warnings,
		Usage:          genResp.Usage,
	}, nil
}

func availableModelNames(r *registry.Registry) []string {
	names := make([]string, 0)
	for name := range r.AvailableModels() {
		names = append(names, name)
	}
	return names
}

// assemblePrompt concatenates the optional history block, the optional
// freshly-read file block, and the caller's own prompt text, in that
// order so the model sees older-to-newer context before the live ask.
func assemblePrompt(historyText, fileText, prompt string) string {
	out := ""
	if historyText != "" {
		out += fmt.Sprintf("--- conversation history ---\n%s--- end history ---\n\n", historyText)
	}
	if fileText != "" {
		out += fileText + "\n"
	}
	out += prompt
	return out
}
