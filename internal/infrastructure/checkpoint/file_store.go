// Package checkpoint implements the CheckpointStore port as a small
// key-value store with optimistic, write-when-dirty serialization to disk,
// generalized from the teacher's atomic status-cache idiom (read whole file,
// mutate in memory, write-temp-then-rename) from a per-pipeline status map
// to arbitrary per-run checkpoint state (spec §9 Design Notes).
package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oronts/datahub/internal/domain/checkpoint"
	"github.com/oronts/datahub/internal/ports"
)

// fileCheckpoint is the on-disk shape for one run's checkpoint. Well-known
// keys (gate pauses, gate timeouts, pipeline stats) are reconstructed into
// their typed domain form on load; everything else round-trips as generic
// JSON, matching the "arbitrary per-step keys" contract.
type fileCheckpoint struct {
	Gates        map[string]checkpoint.GatePause   `json:"gates,omitempty"`
	GateTimeouts map[string]checkpoint.GateTimeout `json:"gateTimeouts,omitempty"`
	Stats        *checkpoint.PipelineStats         `json:"stats,omitempty"`
	Extra        map[string]json.RawMessage        `json:"extra,omitempty"`
}

type fileDocument struct {
	Runs map[string]fileCheckpoint `json:"runs"`
}

// FileStore persists run checkpoints to a single JSON file, guarded by a
// mutex and written via the write-temp-then-rename pattern so a crash mid
// write never corrupts the previous snapshot.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore constructs a FileStore backed by path, creating its parent
// directory if necessary.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("checkpoint: create directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load returns the stored checkpoint for runID, or a fresh empty one if
// none exists yet.
func (s *FileStore) Load(ctx context.Context, runID string) (*checkpoint.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readLocked()
	if err != nil {
		return nil, err
	}

	fc, ok := doc.Runs[runID]
	if !ok {
		return checkpoint.New(), nil
	}
	return fromFileCheckpoint(fc), nil
}

// Save persists cp if and only if cp.Dirty is true, then clears the dirty
// bit on success.
func (s *FileStore) Save(ctx context.Context, runID string, cp *checkpoint.Checkpoint) error {
	if cp == nil || !cp.Dirty {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readLocked()
	if err != nil {
		return err
	}
	if doc.Runs == nil {
		doc.Runs = make(map[string]fileCheckpoint)
	}
	doc.Runs[runID] = toFileCheckpoint(cp)

	if err := s.writeLocked(doc); err != nil {
		return err
	}
	cp.ClearDirty()
	return nil
}

func (s *FileStore) readLocked() (fileDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileDocument{Runs: make(map[string]fileCheckpoint)}, nil
		}
		return fileDocument{}, fmt.Errorf("checkpoint: read %s: %w", s.path, err)
	}
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fileDocument{}, fmt.Errorf("checkpoint: decode %s: %w", s.path, err)
	}
	if doc.Runs == nil {
		doc.Runs = make(map[string]fileCheckpoint)
	}
	return doc, nil
}

func (s *FileStore) writeLocked(doc fileDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint: encode: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("checkpoint: write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("checkpoint: rename temp file: %w", err)
	}
	return nil
}

func toFileCheckpoint(cp *checkpoint.Checkpoint) fileCheckpoint {
	fc := fileCheckpoint{
		Gates:        make(map[string]checkpoint.GatePause),
		GateTimeouts: make(map[string]checkpoint.GateTimeout),
		Extra:        make(map[string]json.RawMessage),
	}
	for key, value := range cp.Data {
		switch {
		case strings.HasPrefix(key, "__gate:"):
			if gp, ok := value.(checkpoint.GatePause); ok {
				fc.Gates[strings.TrimPrefix(key, "__gate:")] = gp
				continue
			}
		case strings.HasPrefix(key, "__gateTimeout:"):
			if gt, ok := value.(checkpoint.GateTimeout); ok {
				fc.GateTimeouts[strings.TrimPrefix(key, "__gateTimeout:")] = gt
				continue
			}
		case key == checkpoint.PipelineStatsKey:
			if stats, ok := value.(checkpoint.PipelineStats); ok {
				fc.Stats = &stats
				continue
			}
		}
		raw, err := json.Marshal(value)
		if err != nil {
			continue
		}
		fc.Extra[key] = raw
	}
	return fc
}

func fromFileCheckpoint(fc fileCheckpoint) *checkpoint.Checkpoint {
	cp := checkpoint.New()
	for stepKey, gp := range fc.Gates {
		gp.StepKey = stepKey
		cp.Data[checkpoint.GateKey(stepKey)] = gp
	}
	for stepKey, gt := range fc.GateTimeouts {
		gt.StepKey = stepKey
		cp.Data[checkpoint.GateTimeoutKey(stepKey)] = gt
	}
	if fc.Stats != nil {
		cp.Data[checkpoint.PipelineStatsKey] = *fc.Stats
	}
	for key, raw := range fc.Extra {
		var v interface{}
		if err := json.Unmarshal(raw, &v); err == nil {
			cp.Data[key] = v
		}
	}
	cp.ClearDirty()
	return cp
}

var _ ports.CheckpointStore = (*FileStore)(nil)
