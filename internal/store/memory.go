package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory keeps encoded records in a map. Records are stored as JSON so a
// caller mutating a saved or loaded Record never touches the stored copy.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string][]byte)}
}

func (m *Memory) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.validate(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkTokens(rec); err != nil {
		return err
	}
	m.records[rec.Code] = data
	return nil
}

// checkTokens enforces the same uniqueness as the SQLite player columns.
func (m *Memory) checkTokens(rec Record) error {
	for code, data := range m.records {
		if code == rec.Code {
			continue
		}
		var other Record
		if err := json.Unmarshal(data, &other); err != nil {
			return fmt.Errorf("decode record %s: %w", code, err)
		}
		for _, tok := range rec.Tokens {
			if tok == "" {
				continue
			}
			for _, o := range other.Tokens {
				if tok == o {
					return fmt.Errorf("%w: token already used by %s", ErrConflict, code)
				}
			}
		}
	}
	return nil
}

func (m *Memory) Load(ctx context.Context, code string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.RLock()
	data, ok := m.records[code]
	m.mu.RUnlock()
	if !ok {
		return Record{}, ErrNotFound
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func (m *Memory) Delete(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[code]; !ok {
		return ErrNotFound
	}
	delete(m.records, code)
	return nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *Memory) Close() error { return nil }
