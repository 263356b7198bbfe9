// Package toolbase implements the shared behavior every tool rides on:
// schema assembly from a tool-specific field map plus the common fields,
// absolute-path validation, image/temperature validation, and the
// prompt-size gate.
package toolbase

// FieldSpec describes one input field for MCP schema emission.
type FieldSpec struct {
	Name        string
	Type        string // "string" | "number" | "boolean" | "array" | "object"
	Description string
	Required    bool
	Enum        []string
	Items       string // element type when Type == "array"
}

// Category mirrors models.ToolCategory without importing it directly, so
// toolbase stays decoupled from the capability catalog's package.
type Category string

const (
	CategoryFastResponse      Category = "fast_response"
	CategoryBalanced          Category = "balanced"
	CategoryExtendedReasoning Category = "extended_reasoning"
)

// CommonFields returns the field map shared by every tool's schema,
// regardless of whether it is a simple, workflow, or consensus tool.
func CommonFields() []FieldSpec {
	return []FieldSpec{
		{Name: "model", Type: "string", Description: "Model name, or \"auto\" to let the server choose."},
		{Name: "temperature", Type: "number", Description: "Sampling temperature."},
		{Name: "thinking_mode", Type: "string", Description: "Thinking-budget level.", Enum: []string{"minimal", "low", "medium", "high", "max"}},
		{Name: "use_websearch", Type: "boolean", Description: "Whether the model should be instructed to consider web search."},
		{Name: "continuation_id", Type: "string", Description: "UUID of a prior thread to continue."},
		{Name: "images", Type: "array", Items: "string", Description: "Absolute paths or data URLs of images to attach."},
		{Name: "files", Type: "array", Items: "string", Description: "Absolute paths of files to attach."},
	}
}

// Schema is the assembled input schema for one tool.
type Schema struct {
	Fields []FieldSpec
}

// AssembleSchema merges toolFields with CommonFields(), tool fields first
// so tool-specific documentation appears before the shared boilerplate.
func AssembleSchema(toolFields []FieldSpec) Schema {
	fields := make([]FieldSpec, 0, len(toolFields)+len(CommonFields()))
	fields = append(fields, toolFields...)
	fields = append(fields, CommonFields()...)
	return Schema{Fields: fields}
}

// ToJSONSchema renders Schema as an MCP-style JSON schema object.
func (s Schema) ToJSONSchema() map[string]interface{} {
	properties := map[string]interface{}{}
	var required []string
	for _, f := range s.Fields {
		prop := map[string]interface{}{
			"type":        f.Type,
			"description": f.Description,
		}
		if len(f.Enum) > 0 {
			prop["enum"] = f.Enum
		}
		if f.Type == "array" && f.Items != "" {
			prop["items"] = map[string]interface{}{"type": f.Items}
		}
		properties[f.Name] = prop
		if f.Required {
			required = append(required, f.Name)
		}
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
