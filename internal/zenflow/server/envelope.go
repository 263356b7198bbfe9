package server

// Envelope is the uniform response shape every tool call returns to the
// MCP host, per the external-interface contract.
type Envelope struct {
	Status         string                 `json:"status"`
	Content        string                 `json:"content"`
	ContentType    string                 `json:"content_type"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	ContinuationID string                 `json:"continuation_id,omitempty"`

	// Workflow-specific fields, omitted entirely for simple-tool responses;
	// consensus responses set only NextSteps among them.
	StepNumber       int                    `json:"step_number,omitempty"`
	TotalSteps       int                    `json:"total_steps,omitempty"`
	NextStepRequired *bool                  `json:"next_step_required,omitempty"`
	RequiredActions  []string               `json:"required_actions,omitempty"`
	NextSteps        string                 `json:"next_steps,omitempty"`
	ExpertAnalysis   string                 `json:"expert_analysis,omitempty"`
	Complete         map[string]interface{} `json:"complete,omitempty"`

	// Consensus-specific fields.
	ModelsUsed    []string `json:"models_used,omitempty"`
	ModelsSkipped []string `json:"models_skipped,omitempty"`
	ModelsErrored []string `json:"models_errored,omitempty"`
}

// Success builds a plain, non-continuation success envelope.
func Success(content string) Envelope {
	return Envelope{Status: "success", Content: content, ContentType: "text"}
}

// SuccessWithContinuation builds a success envelope that offers a
// follow-up thread.
func SuccessWithContinuation(content, continuationID string) Envelope {
	return Envelope{Status: "continuation_available", Content: content, ContentType: "text", ContinuationID: continuationID}
}

// Error builds an error envelope from a caught error's message. This is
// also what C13 converts any uncaught panic or error into, so the MCP
// host never sees a raw Go error or stack trace.
func Error(message string) Envelope {
	return Envelope{Status: "error", Content: message, ContentType: "text"}
}

// RequiresFilePrompt signals the prompt was too large for inline
// submission and must be resubmitted as a prompt.txt/prompt.md file.
func RequiresFilePrompt(message string) Envelope {
	return Envelope{Status: "requires_file_prompt", Content: message, ContentType: "text"}
}
