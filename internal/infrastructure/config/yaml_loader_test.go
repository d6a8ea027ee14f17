package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/infrastructure/logging"
)

func TestYAMLLoaderLoadCanonicalSuccess(t *testing.T) {
	loader := newTestLoader()
	ctx := context.Background()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pipeline.yaml")

	yamlContent := `version: 1
name: "demo"
steps:
  - key: "extract"
    type: "EXTRACT"
    config:
      adapterCode: "csv"
  - key: "load"
    type: "LOAD"
    config:
      adapterCode: "productUpsert"
edges:
  - id: "e1"
    from: "extract"
    to: "load"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	def, err := loader.Load(ctx, configPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if def == nil {
		t.Fatal("expected definition, got nil")
	}
	if def.Name != "demo" {
		t.Fatalf("expected name demo, got %s", def.Name)
	}
	if len(def.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(def.Steps))
	}
	if def.Steps[1].AdapterCode() != "productUpsert" {
		t.Fatalf("expected adapterCode to be preserved")
	}
	if !def.HasEdges() {
		t.Fatalf("expected edges to be preserved")
	}
}

func TestYAMLLoaderLoadVisualSuccess(t *testing.T) {
	loader := newTestLoader()
	ctx := context.Background()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pipeline.yaml")

	yamlContent := `version: 1
name: "demo"
nodes:
  - id: "extract"
    data:
      type: "EXTRACT"
      config:
        adapterCode: "csv"
  - id: "load"
    data:
      type: "LOAD"
      config:
        adapterCode: "productUpsert"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	def, err := loader.Load(ctx, configPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(def.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(def.Steps))
	}
	if !def.HasEdges() {
		t.Fatalf("expected a synthesized linear chain")
	}
	if def.Edges[0].From != "extract" || def.Edges[0].To != "load" {
		t.Fatalf("expected synthesized edge extract->load, got %+v", def.Edges[0])
	}
}

func TestYAMLLoaderLoadMissingFile(t *testing.T) {
	loader := newTestLoader()
	ctx := context.Background()

	_, err := loader.Load(ctx, "does-not-exist.yaml")
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	assertDomainError(t, err, pipeline.ErrCodeNotFound)
}

func TestYAMLLoaderLoadParseError(t *testing.T) {
	loader := newTestLoader()
	ctx := context.Background()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")

	if err := os.WriteFile(configPath, []byte("version: ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := loader.Load(ctx, configPath)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	assertDomainError(t, err, pipeline.ErrCodeValidation)
}

func TestYAMLLoaderLoadDomainValidationError(t *testing.T) {
	loader := newTestLoader()
	ctx := context.Background()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	yamlContent := `version: 1
name: "demo"
steps:
  - key: "duplicate"
    type: "EXTRACT"
  - key: "duplicate"
    type: "LOAD"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := loader.Load(ctx, configPath)
	if err == nil {
		t.Fatalf("expected domain validation error")
	}
	assertDomainError(t, err, pipeline.ErrCodeDuplicate)
}

func TestYAMLLoaderLoadCancelled(t *testing.T) {
	loader := newTestLoader()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.Load(ctx, "whatever.yaml")
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	assertDomainError(t, err, pipeline.ErrCodeCancelled)
}

func TestYAMLLoaderValidate(t *testing.T) {
	loader := newTestLoader()
	ctx := context.Background()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pipeline.yaml")

	yamlContent := `version: 1
name: "demo"
steps:
  - key: "extract"
    type: "EXTRACT"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := loader.Validate(ctx, configPath); err != nil {
		t.Fatalf("expected validate success, got %v", err)
	}
}

func assertDomainError(t *testing.T, err error, code pipeline.ErrorCode) {
	t.Helper()
	var domainErr *pipeline.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %T", err)
	}
	if domainErr.Code != code {
		t.Fatalf("expected code %s, got %s", code, domainErr.Code)
	}
}

func newTestLoader() *YAMLLoader {
	return NewYAMLLoader(logging.NewNoOpLogger())
}
