package document

import (
	"fmt"
	"os"
	"path/filepath"
)

func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(data), nil
}

// Write replaces the document atomically through a temp file in the same
// directory. Nothing is written when content is unchanged; the returned
// bool reports whether the file changed.
func Write(path, original, content string) (bool, error) {
	if content == original {
		return false, nil
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return false, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return false, fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return false, fmt.Errorf("failed to set document mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return false, fmt.Errorf("failed to replace document: %w", err)
	}

	return true, nil
}
