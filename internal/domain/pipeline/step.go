package pipeline

import "regexp"

var stepKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// StepKind enumerates the step kinds a pipeline's DAG may contain.
type StepKind string

const (
	StepTrigger   StepKind = "TRIGGER"
	StepExtract   StepKind = "EXTRACT"
	StepTransform StepKind = "TRANSFORM"
	StepValidate  StepKind = "VALIDATE"
	StepEnrich    StepKind = "ENRICH"
	StepRoute     StepKind = "ROUTE"
	StepLoad      StepKind = "LOAD"
	StepExport    StepKind = "EXPORT"
	StepFeed      StepKind = "FEED"
	StepSink      StepKind = "SINK"
	StepGate      StepKind = "GATE"
)

var validStepKinds = []StepKind{
	StepTrigger, StepExtract, StepTransform, StepValidate, StepEnrich,
	StepRoute, StepLoad, StepExport, StepFeed, StepSink, StepGate,
}

// ProcessingKinds are the step kinds that participate in the hook service's
// BEFORE_<X>/AFTER_<X> stage pairs; TRIGGER and GATE follow their own
// protocol instead.
var ProcessingKinds = []StepKind{
	StepExtract, StepTransform, StepValidate, StepEnrich, StepRoute,
	StepLoad, StepExport, StepFeed, StepSink,
}

// StepDefinition is one node in a pipeline's DAG. It is created with the
// pipeline and never mutated mid-run.
type StepDefinition struct {
	Key    string
	Type   StepKind
	Name   string
	Config map[string]interface{}
}

// Validate ensures the step satisfies its structural invariants.
func (s StepDefinition) Validate() error {
	if s.Key == "" {
		return newMissingFieldError("key")
	}
	if !stepKeyPattern.MatchString(s.Key) {
		return newValidationError("step key must match ^[a-zA-Z0-9_-]+$", map[string]interface{}{"step_key": s.Key})
	}
	if s.Type == "" {
		return newMissingFieldError("type")
	}
	if !isValidStepKind(s.Type) {
		return newTypeError("one of the known step kinds", string(s.Type)).WithContext(map[string]interface{}{"step_key": s.Key})
	}
	return nil
}

// AdapterCode returns the step config's `adapterCode` field, the string that
// selects the concrete executor implementation, if present.
func (s StepDefinition) AdapterCode() string {
	if s.Config == nil {
		return ""
	}
	if v, ok := s.Config["adapterCode"].(string); ok {
		return v
	}
	return ""
}

// IsProcessingKind reports whether the step's kind runs through the hook
// service's BEFORE_<X>/AFTER_<X> stage pair.
func (s StepDefinition) IsProcessingKind() bool {
	for _, k := range ProcessingKinds {
		if k == s.Type {
			return true
		}
	}
	return false
}

func isValidStepKind(k StepKind) bool {
	for _, candidate := range validStepKinds {
		if candidate == k {
			return true
		}
	}
	return false
}
