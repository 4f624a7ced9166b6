package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap/config"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
)

func TestClassifyWithoutAPIKey(t *testing.T) {
	c := NewOpenAIClassifier(config.OpenAIConfig{Model: "gpt-4o-mini"})

	if c.Available() {
		t.Fatal("classifier without key must report unavailable")
	}

	_, err := c.Classify(context.Background(), ports.ClassifyInput{CommentText: "x"})
	if !errors.Is(err, ports.ErrClassifierUnavailable) {
		t.Fatalf("expected ErrClassifierUnavailable, got %v", err)
	}
}

func TestParseTriageJSON(t *testing.T) {
	result, err := parseTriageJSON(`{"track":true,"tag":"RFI","risk":"HIGH","required_response":"Confirm."}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !result.Track || result.Tag != "RFI" || result.Risk != "HIGH" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestParseTriageJSONWithSurroundingProse(t *testing.T) {
	text := "Here is the verdict:\n{\"track\":false,\"tag\":\"QA\",\"risk\":\"LOW\",\"required_response\":\"\"}\nHope that helps."

	result, err := parseTriageJSON(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.Track || result.Tag != "QA" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestParseTriageJSONRejectsNonJSON(t *testing.T) {
	for _, text := range []string{"", "no json here", "{broken"} {
		if _, err := parseTriageJSON(text); err == nil {
			t.Fatalf("expected error for %q", text)
		}
	}
}

func TestNormalizeTag(t *testing.T) {
	cases := map[string]string{
		"RFI":       "RFI",
		"rfi":       "RFI",
		" coord ":   "COORD",
		"NONSENSE":  "OTHER",
		"SCHEDULE?": "OTHER",
		"":          "",
	}
	for in, want := range cases {
		if got := normalizeTag(in); got != want {
			t.Fatalf("normalizeTag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeRisk(t *testing.T) {
	cases := map[string]string{
		"LOW":    "LOW",
		"med":    "MED",
		"MEDIUM": "MED",
		"High":   "HIGH",
		"severe": "",
		"":       "",
	}
	for in, want := range cases {
		if got := normalizeRisk(in); got != want {
			t.Fatalf("normalizeRisk(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTriageSchemaShape(t *testing.T) {
	schema := triageSchema()

	if schema["type"] != "object" {
		t.Fatalf("schema type: got %v", schema["type"])
	}
	if schema["additionalProperties"] != false {
		t.Fatal("schema must forbid additional properties")
	}

	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema properties missing: %v", schema)
	}
	for _, name := range []string{"track", "tag", "risk", "required_response"} {
		if _, ok := props[name]; !ok {
			t.Fatalf("schema missing property %q", name)
		}
	}
}
