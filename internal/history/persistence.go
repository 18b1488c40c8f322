package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteJSONLines writes one JSON object per record
func WriteJSONLines(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// ReadJSONLines reads records written by WriteJSONLines
func ReadJSONLines(r io.Reader) ([]Record, error) {
	var out []Record
	dec := json.NewDecoder(r)
	for {
		var rec Record
		err := dec.Decode(&rec)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding record %d: %w", len(out), err)
		}
		out = append(out, rec)
	}
}

// SaveFile writes records to path, creating parent directories. The file is
// written to a temporary name first and renamed into place.
func SaveFile(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating history file: %w", err)
	}
	if err := WriteJSONLines(f, records); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing history file: %w", err)
	}
	return os.Rename(tmp, path)
}
