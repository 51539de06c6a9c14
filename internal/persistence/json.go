package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// SaveJSON encodes object as indented JSON and writes it to filePath. The file
// is written to a temporary sibling first and renamed into place, so readers
// and file watchers never observe a half-written document.
func SaveJSON(filePath string, object interface{}) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(object, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to json encode for file %s: %w", filePath, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			if rmErr := os.Remove(tmpName); rmErr != nil {
				log.Warnf("failed to remove temp file %s: %v", tmpName, rmErr)
			}
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file for %s: %w", filePath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", filePath, err)
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		return fmt.Errorf("failed to move temp file to %s: %w", filePath, err)
	}
	return nil
}

// LoadJSON decodes the JSON file at filePath into objectPointer.
// If the file does not exist, it returns os.ErrNotExist, allowing callers to
// handle fresh starts gracefully.
func LoadJSON(filePath string, objectPointer interface{}) error {
	data, err := LoadRaw(filePath)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, objectPointer); err != nil {
		return fmt.Errorf("failed to json decode file %s: %w", filePath, err)
	}
	return nil
}

// LoadRaw returns the bytes of filePath for callers that decode leniently.
// A missing file is reported as os.ErrNotExist.
func LoadRaw(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath) // #nosec G304 -- filePath is controlled by application config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	return data, nil
}
