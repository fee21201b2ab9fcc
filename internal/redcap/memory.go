package redcap

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// EventNameField is the pseudo-field carrying the unique event name in flat
// exports and in update documents.
const EventNameField = "redcap_event_name"

// MemoryStore is an in-memory Store used by tests and local development. It
// intentionally favors clarity over performance.
type MemoryStore struct {
	mu       sync.RWMutex
	idFields map[string]string
	events   map[string]map[string]string
	records  map[string][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		idFields: make(map[string]string),
		events:   make(map[string]map[string]string),
		records:  make(map[string][]Record),
	}
}

// AddProject registers a project with its record identifier field.
func (s *MemoryStore) AddProject(projectID, idField string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idFields[projectID] = idField
	if s.events[projectID] == nil {
		s.events[projectID] = make(map[string]string)
	}
}

// AddEvent registers a unique event name with its event id.
func (s *MemoryStore) AddEvent(projectID, uniqueEventName, eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events[projectID] == nil {
		s.events[projectID] = make(map[string]string)
	}
	s.events[projectID][uniqueEventName] = eventID
}

// AddRecord appends a record snapshot. The record should carry the project's
// id field and EventNameField.
func (s *MemoryStore) AddRecord(projectID string, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[projectID] = append(s.records[projectID], cloneRecord(rec))
}

func (s *MemoryStore) FetchRecords(_ context.Context, projectID string, opts FetchOptions) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idField, ok := s.idFields[projectID]
	if !ok {
		return nil, fmt.Errorf("unknown project %s", projectID)
	}

	var out []Record
	for _, rec := range s.records[projectID] {
		if len(opts.Events) > 0 && !slices.Contains(opts.Events, rec[EventNameField]) {
			continue
		}
		if len(opts.Records) > 0 && !slices.Contains(opts.Records, rec[idField]) {
			continue
		}
		out = append(out, projectFields(rec, idField, opts.Fields))
	}
	return out, nil
}

func (s *MemoryStore) SaveRecords(_ context.Context, projectID string, records []Record) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idField, ok := s.idFields[projectID]
	if !ok {
		return SaveResult{}, fmt.Errorf("unknown project %s", projectID)
	}

	for _, update := range records {
		merged := false
		for _, existing := range s.records[projectID] {
			if existing[idField] == update[idField] && existing[EventNameField] == update[EventNameField] {
				for k, v := range update {
					existing[k] = v
				}
				merged = true
				break
			}
		}
		if !merged {
			s.records[projectID] = append(s.records[projectID], cloneRecord(update))
		}
	}
	return SaveResult{Count: len(records)}, nil
}

func (s *MemoryStore) RecordIDField(_ context.Context, projectID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idField, ok := s.idFields[projectID]
	if !ok {
		return "", fmt.Errorf("unknown project %s", projectID)
	}
	return idField, nil
}

func (s *MemoryStore) EventID(_ context.Context, projectID, uniqueEventName string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	eventID, ok := s.events[projectID][uniqueEventName]
	if !ok {
		return "", fmt.Errorf("event %q not defined in project %s", uniqueEventName, projectID)
	}
	return eventID, nil
}

// projectFields mimics the platform's export: only requested fields come
// back, with the identifier and event name always present.
func projectFields(rec Record, idField string, fields []string) Record {
	if len(fields) == 0 {
		return cloneRecord(rec)
	}
	out := Record{}
	for _, f := range fields {
		out[f] = rec[f]
	}
	out[idField] = rec[idField]
	out[EventNameField] = rec[EventNameField]
	return out
}

func cloneRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
