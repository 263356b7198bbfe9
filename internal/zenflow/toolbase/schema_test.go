package toolbase

import "testing"

func TestAssembleSchemaMergesCommonFields(t *testing.T) {
	schema := AssembleSchema([]FieldSpec{
		{Name: "prompt", Type: "string", Required: true},
	})
	if len(schema.Fields) != 1+len(CommonFields()) {
		t.Fatalf("expected %d fields, got %d", 1+len(CommonFields()), len(schema.Fields))
	}
	if schema.Fields[0].Name != "prompt" {
		t.Fatalf("expected tool field first, got %s", schema.Fields[0].Name)
	}
}

func TestToJSONSchemaMarksRequired(t *testing.T) {
	schema := AssembleSchema([]FieldSpec{
		{Name: "prompt", Type: "string", Required: true},
	})
	js := schema.ToJSONSchema()
	required, ok := js["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "prompt" {
		t.Fatalf("expected required=[prompt], got %v", js["required"])
	}
	props, ok := js["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected properties map")
	}
	if _, ok := props["model"]; !ok {
		t.Fatalf("expected common field 'model' present in properties")
	}
}

func TestToJSONSchemaOmitsRequiredWhenEmpty(t *testing.T) {
	schema := AssembleSchema(nil)
	js := schema.ToJSONSchema()
	if _, ok := js["required"]; ok {
		t.Fatalf("did not expect a required key when nothing is required")
	}
}
