package main

import (
	"reflect"
	"strings"
	"testing"
)

func TestSetDotted(t *testing.T) {
	doc := map[string]any{
		"model": map[string]any{"name": "knn"},
		"flat":  "x",
	}

	if err := setDotted(doc, strings.Split("model.params.k", "."), 5); err != nil {
		t.Fatalf("setDotted failed: %v", err)
	}
	if err := setDotted(doc, []string{"threshold"}, 0.6); err != nil {
		t.Fatalf("setDotted failed: %v", err)
	}

	want := map[string]any{
		"model": map[string]any{
			"name":   "knn",
			"params": map[string]any{"k": 5},
		},
		"flat":      "x",
		"threshold": 0.6,
	}
	if !reflect.DeepEqual(doc, want) {
		t.Errorf("expected %v, got %v", want, doc)
	}

	if err := setDotted(doc, strings.Split("flat.inner", "."), 1); err == nil {
		t.Error("expected error when descending into a scalar")
	}
	if err := setDotted(doc, strings.Split("model..k", "."), 1); err == nil {
		t.Error("expected error for empty segment")
	}
}
