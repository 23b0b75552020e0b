// Package state persists the small JSON document that feeds back into
// planning: active profile, active environment, and per-service runtime
// metadata. Operations are crash-tolerant: a missing or unparseable
// state.json degrades to defaults rather than failing the reconcile.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"zapper/pkg/logging"
)

const stateSubsystem = "StateStore"

// FileName is the state document's path relative to .zap/.
const FileName = "state.json"

// ServiceState is the per-service runtime metadata the Executor records on
// start and clears on stop.
type ServiceState struct {
	StartPid         int       `json:"startPid,omitempty"`
	StartRequestedAt time.Time `json:"startRequestedAt,omitempty"`
}

// Document is the persisted shape of state.json.
type Document struct {
	LastUpdated       time.Time               `json:"lastUpdated"`
	ActiveProfile     string                  `json:"activeProfile,omitempty"`
	ActiveEnvironment string                  `json:"activeEnvironment,omitempty"`
	Services          map[string]ServiceState `json:"services"`
}

func defaultDocument() Document {
	return Document{Services: map[string]ServiceState{}}
}

// Store guards state.json with an exclusive lock for its read-merge-write
// cycle, so concurrent Executor actions within one wave cannot interleave
// writes.
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a Store for the state document under projectRoot/.zap.
func New(projectRoot string) *Store {
	return &Store{path: filepath.Join(projectRoot, ".zap", FileName)}
}

// Load reads the document, returning defaults (and logging a warning)
// if the file is missing or cannot be parsed.
func (s *Store) Load() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		logging.Warn(stateSubsystem, "could not read %s: %v; using defaults", s.path, err)
		return defaultDocument()
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		logging.Warn(stateSubsystem, "could not parse %s: %v; using defaults", s.path, err)
		return defaultDocument()
	}
	if doc.Services == nil {
		doc.Services = map[string]ServiceState{}
	}
	return doc
}

// Mutate reads the current document, applies fn, stamps LastUpdated, and
// writes the result back atomically.
func (s *Store) Mutate(fn func(*Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadLocked()
	fn(&doc)
	doc.LastUpdated = time.Now().UTC()
	return s.saveLocked(doc)
}

func (s *Store) saveLocked(doc Document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// SetActiveProfile persists the active profile (empty string clears it).
func (s *Store) SetActiveProfile(profile string) error {
	return s.Mutate(func(d *Document) { d.ActiveProfile = profile })
}

// SetActiveEnvironment persists the active environment (empty string
// clears it).
func (s *Store) SetActiveEnvironment(env string) error {
	return s.Mutate(func(d *Document) { d.ActiveEnvironment = env })
}

// RecordStart stamps a service's runtime metadata after a successful start.
func (s *Store) RecordStart(serviceName string, pid int, requestedAt time.Time) error {
	return s.Mutate(func(d *Document) {
		d.Services[serviceName] = ServiceState{StartPid: pid, StartRequestedAt: requestedAt}
	})
}

// ClearStart removes a service's runtime metadata after a stop.
func (s *Store) ClearStart(serviceName string) error {
	return s.Mutate(func(d *Document) {
		delete(d.Services, serviceName)
	})
}
