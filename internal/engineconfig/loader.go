package engineconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file, overlays it on Default, validates, and
// returns the config together with the raw file contents for snapshotting.
//
// Overlay semantics: fields absent from the file keep their default, and
// rate-table entries override or extend the built-in table. A file that
// only retunes weights does not need to restate the rates.
func Load(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, "", fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, string(data), nil
}

// Hash returns the SHA-256 over the canonical JSON form of the config.
// Two runs with equal hashes used identical settings.
func Hash(cfg *Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config for hashing: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Snapshot pins the exact configuration a run used, for audit and replay.
type Snapshot struct {
	ConfigHash    string    `json:"config_hash"`
	ConfigYAML    string    `json:"config_yaml"`
	MethodologyID string    `json:"methodology_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewSnapshot builds a Snapshot from a validated config. rawYAML is the file
// contents from Load; pass "" for Default configs and the config is
// marshaled instead.
func NewSnapshot(cfg *Config, rawYAML string) (*Snapshot, error) {
	hash, err := Hash(cfg)
	if err != nil {
		return nil, err
	}
	if rawYAML == "" {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshal config for snapshot: %w", err)
		}
		rawYAML = string(out)
	}
	return &Snapshot{
		ConfigHash:    hash,
		ConfigYAML:    rawYAML,
		MethodologyID: cfg.Meta.MethodologyID,
		CreatedAt:     time.Now().UTC(),
	}, nil
}
