// Package config implements the ConfigLoader port by reading pipeline
// definitions from YAML documents on disk, in either canonical (steps+edges)
// or visual (nodes+edges) wire form (spec §6).
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	domain "github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/ports"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// wireEdge carries both the canonical (from/to) and visual (source/target)
// field names; exactly one pair is populated depending on document shape.
type wireEdge struct {
	ID     string `yaml:"id,omitempty"`
	From   string `yaml:"from,omitempty"`
	To     string `yaml:"to,omitempty"`
	Source string `yaml:"source,omitempty"`
	Target string `yaml:"target,omitempty"`
	Branch string `yaml:"branch,omitempty"`
}

type wireStep struct {
	Key    string                 `yaml:"key" validate:"required"`
	Type   string                 `yaml:"type" validate:"required"`
	Name   string                 `yaml:"name,omitempty"`
	Config map[string]interface{} `yaml:"config,omitempty"`
}

type wireNodeData struct {
	Type   string                 `yaml:"type" validate:"required"`
	Name   string                 `yaml:"name,omitempty"`
	Config map[string]interface{} `yaml:"config,omitempty"`
}

type wireNode struct {
	ID   string       `yaml:"id" validate:"required"`
	Data wireNodeData `yaml:"data"`
}

type wireParallelExecution struct {
	Enabled            bool   `yaml:"enabled,omitempty"`
	MaxConcurrentSteps int    `yaml:"maxConcurrentSteps,omitempty"`
	ErrorPolicy        string `yaml:"errorPolicy,omitempty"`
}

type wireContext struct {
	Variables         map[string]interface{} `yaml:"variables,omitempty"`
	ParallelExecution wireParallelExecution  `yaml:"parallelExecution,omitempty"`
}

type wireDocument struct {
	Version      int                    `yaml:"version" validate:"required,min=1"`
	Name         string                 `yaml:"name,omitempty"`
	Steps        []wireStep             `yaml:"steps,omitempty" validate:"omitempty,dive"`
	Nodes        []wireNode             `yaml:"nodes,omitempty" validate:"omitempty,dive"`
	Edges        []wireEdge             `yaml:"edges,omitempty"`
	Context      wireContext            `yaml:"context,omitempty"`
	Capabilities []string               `yaml:"capabilities,omitempty"`
	Trigger      map[string]interface{} `yaml:"trigger,omitempty"`
}

// YAMLLoader implements the ConfigLoader port by reading YAML files from disk.
type YAMLLoader struct {
	logger    ports.Logger
	validator *validator.Validate
}

// NewYAMLLoader constructs a YAMLLoader.
func NewYAMLLoader(logger ports.Logger) *YAMLLoader {
	return &YAMLLoader{logger: logger, validator: validator.New()}
}

// Load materializes a fully validated pipeline definition, accepting either
// its canonical or visual wire form.
func (l *YAMLLoader) Load(ctx context.Context, path string) (*domain.PipelineDefinition, error) {
	if err := contextCheck(ctx); err != nil {
		return nil, err
	}

	l.logDebug(ctx, "loading pipeline configuration", map[string]interface{}{"path": path})

	data, err := os.ReadFile(path)
	if err != nil {
		l.logError(ctx, "failed to read configuration", err, map[string]interface{}{"path": path})
		return nil, convertReadError(err, path)
	}

	var doc wireDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		l.logError(ctx, "failed to parse configuration", err, map[string]interface{}{"path": path})
		return nil, domainError(domain.ErrCodeValidation, "invalid YAML syntax", err, map[string]interface{}{
			"path": path,
			"line": extractLine(err),
		})
	}

	if len(doc.Steps) == 0 && len(doc.Nodes) == 0 {
		return nil, domainError(domain.ErrCodeValidation, "document declares neither steps nor nodes", nil, map[string]interface{}{"path": path})
	}

	if err := l.validator.Struct(doc); err != nil {
		return nil, domainError(domain.ErrCodeValidation, "configuration failed schema validation", err, map[string]interface{}{"path": path})
	}

	def := toDefinition(doc)
	if err := def.Validate(); err != nil {
		l.logError(ctx, "configuration failed domain validation", err, map[string]interface{}{"path": path})
		return nil, err
	}

	l.logInfo(ctx, "pipeline configuration loaded", map[string]interface{}{"path": path, "steps": len(def.Steps)})
	return &def, nil
}

// Validate performs a lightweight syntactic check without instantiating the
// whole definition.
func (l *YAMLLoader) Validate(ctx context.Context, path string) error {
	if err := contextCheck(ctx); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		l.logError(ctx, "configuration path stat failed", err, map[string]interface{}{"path": path})
		return convertReadError(err, path)
	}
	if info.IsDir() {
		return domainError(domain.ErrCodeValidation, "configuration path is a directory", nil, map[string]interface{}{"path": path})
	}

	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		l.logDebug(ctx, "validating pipeline configuration", map[string]interface{}{"path": path})
		_, err = l.Load(ctx, path)
	default:
		err = domainError(domain.ErrCodeValidation, "unsupported configuration file extension", nil, map[string]interface{}{"path": path, "extension": ext})
	}
	return err
}

var _ ports.ConfigLoader = (*YAMLLoader)(nil)

// toDefinition converts a decoded wire document into canonical form,
// dispatching to the visual→canonical conversion when the document is
// shaped as nodes+edges instead of steps+edges.
func toDefinition(doc wireDocument) domain.PipelineDefinition {
	ctx := domain.PipelineContext{
		Variables: doc.Context.Variables,
		ParallelExecution: domain.ParallelExecution{
			Enabled:            doc.Context.ParallelExecution.Enabled,
			MaxConcurrentSteps: doc.Context.ParallelExecution.MaxConcurrentSteps,
			ErrorPolicy:        domain.ErrorPolicy(doc.Context.ParallelExecution.ErrorPolicy),
		},
	}

	if len(doc.Nodes) > 0 {
		nodes := make([]domain.VisualNode, len(doc.Nodes))
		for i, n := range doc.Nodes {
			nodes[i] = domain.VisualNode{
				ID: n.ID,
				Data: domain.VisualNodeData{
					Type:   domain.StepKind(n.Data.Type),
					Name:   n.Data.Name,
					Config: n.Data.Config,
				},
			}
		}
		edges := make([]domain.VisualEdge, len(doc.Edges))
		for i, e := range doc.Edges {
			edges[i] = domain.VisualEdge{ID: e.ID, Source: e.Source, Target: e.Target, Branch: e.Branch}
		}
		visual := domain.VisualDefinition{
			Version:      doc.Version,
			Nodes:        nodes,
			Edges:        edges,
			Context:      ctx,
			Capabilities: doc.Capabilities,
			Trigger:      doc.Trigger,
		}
		return visual.ToCanonical()
	}

	steps := make([]domain.StepDefinition, len(doc.Steps))
	for i, s := range doc.Steps {
		steps[i] = domain.StepDefinition{Key: s.Key, Type: domain.StepKind(s.Type), Name: s.Name, Config: s.Config}
	}
	edges := make([]domain.Edge, len(doc.Edges))
	for i, e := range doc.Edges {
		edges[i] = domain.Edge{ID: e.ID, From: e.From, To: e.To, Branch: e.Branch}
	}
	return domain.PipelineDefinition{
		Version:      doc.Version,
		Name:         doc.Name,
		Steps:        steps,
		Edges:        edges,
		Context:      ctx,
		Capabilities: doc.Capabilities,
		Trigger:      doc.Trigger,
	}
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}
	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}
	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}
	return line
}

func convertReadError(err error, path string) error {
	if os.IsNotExist(err) {
		return domainError(domain.ErrCodeNotFound, "configuration not found", err, map[string]interface{}{"path": path})
	}
	return domainError(domain.ErrCodeInternal, "configuration load failed", err, map[string]interface{}{"path": path})
}

func contextCheck(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return domainError(domain.ErrCodeCancelled, "operation cancelled", err, nil)
	}
	return nil
}

func domainError(code domain.ErrorCode, message string, cause error, ctxFields map[string]interface{}) *domain.DomainError {
	return &domain.DomainError{Code: code, Message: message, Cause: cause, Context: ctxFields}
}

func (l *YAMLLoader) logDebug(ctx context.Context, msg string, fields map[string]interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Debug(ctx, msg, flattenFields(fields)...)
}

func (l *YAMLLoader) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Info(ctx, msg, flattenFields(fields)...)
}

func (l *YAMLLoader) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if l.logger == nil {
		return
	}
	payload := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload["error"] = err
	l.logger.Error(ctx, msg, flattenFields(payload)...)
}

func flattenFields(fields map[string]interface{}) []interface{} {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return args
}
