package store

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// LookupJSON reads a single value from a Raw-format (.cfg) config file by
// its gjson key path. ok is false when the file, or the key, is absent.
func (s *Store) LookupJSON(path, key string, lock bool) (value string, ok bool, err error) {
	data, err := s.loadData(path, lock)
	if err != nil {
		return "", false, err
	}
	res := gjson.GetBytes(data, key)
	if !res.Exists() {
		return "", false, nil
	}
	return res.Raw, true, nil
}

// UpdateJSON sets a single key in a Raw-format config file, leaving every
// other byte of the document untouched. The whole read-modify-write runs
// under the path's lock and the result is persisted atomically. A missing
// file starts from an empty document.
func (s *Store) UpdateJSON(path, key string, value any) error {
	return s.locker.WithLock(path, func() error {
		data, err := s.loadData(path, false)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			data = []byte("{}")
		}
		updated, err := sjson.SetBytes(data, key, value)
		if err != nil {
			return &WriteError{Path: path, Err: err}
		}
		return s.saveData(path, updated, FileMode)
	})
}
