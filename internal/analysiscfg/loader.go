package analysiscfg

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads a profile YAML and returns the validated Config with the
// raw bytes. KnownFields(true) fails fast on typos and stale fields.
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, data, err
	}

	return cfg, data, nil
}

// LoadOrDefault loads the profile at path, or the reference profile
// when path is empty.
func LoadOrDefault(path string) (*Config, []byte, error) {
	if path == "" {
		return Default(), nil, nil
	}
	return Load(path)
}

// Hash generates a SHA256 over the canonical JSON form of the config.
// Structs, not maps, so field order and the hash stay reproducible.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// NewProfileSnapshot creates an audit snapshot of a loaded profile.
func NewProfileSnapshot(cfg *Config, yamlData []byte) (*ProfileSnapshot, error) {
	hash, err := Hash(cfg)
	if err != nil {
		return nil, err
	}

	return &ProfileSnapshot{
		ConfigHash: hash,
		ConfigYAML: string(yamlData),
		ProfileID:  cfg.Meta.ProfileID,
		CreatedAt:  time.Now(),
	}, nil
}
