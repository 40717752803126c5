package store

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAML decodes the YAML document at path into out. It reports false,
// leaving out untouched, when the file is missing or empty.
func (s *Store) LoadYAML(path string, out any, lock bool) (bool, error) {
	data, err := s.loadData(path, lock)
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return false, &ReadError{Path: path, Err: err}
	}
	return true, nil
}

// SaveYAML encodes v as YAML and persists it atomically.
func (s *Store) SaveYAML(path string, v any, mode os.FileMode) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return s.saveData(path, data, mode)
}
