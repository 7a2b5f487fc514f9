package brewlog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"brewlog/internal/models"
)

// SchemaVersion is written into every envelope. Payloads without an envelope
// (a bare JSON array) are version 0.
const SchemaVersion = 1

type envelope struct {
	Version int                   `json:"version"`
	Entries []models.BrewLogEntry `json:"entries"`
}

func encodeEntries(entries []models.BrewLogEntry) (string, error) {
	if entries == nil {
		entries = []models.BrewLogEntry{}
	}
	data, err := json.Marshal(envelope{Version: SchemaVersion, Entries: entries})
	if err != nil {
		return "", fmt.Errorf("encode brew log: %w", err)
	}
	return string(data), nil
}

// decodeEntries returns the entries and the schema version they were stored at.
func decodeEntries(payload string) ([]models.BrewLogEntry, int, error) {
	trimmed := bytes.TrimSpace([]byte(payload))
	if len(trimmed) == 0 {
		return nil, 0, fmt.Errorf("empty payload")
	}

	if trimmed[0] == '[' {
		var entries []models.BrewLogEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, 0, err
		}
		return migrate(entries, 0)
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, 0, err
	}
	if env.Version > SchemaVersion {
		return nil, env.Version, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	return migrate(env.Entries, env.Version)
}

// migrate upgrades entries read at version to the current shape. Version 0
// and 1 share a shape; only the envelope differs.
func migrate(entries []models.BrewLogEntry, version int) ([]models.BrewLogEntry, int, error) {
	if entries == nil {
		entries = []models.BrewLogEntry{}
	}
	return entries, version, nil
}
