package schema

import (
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshotVersion guards against decoding snapshots written by an
// incompatible model layout.
const snapshotVersion = 1

type snapshot struct {
	Version int     `msgpack:"version"`
	Schema  *Schema `msgpack:"schema"`
}

// WriteSnapshot encodes the schema as a msgpack snapshot. Snapshots let
// generation run without a live database connection; they are an input
// cache, not pipeline state.
func WriteSnapshot(w io.Writer, s *Schema) error {
	return msgpack.NewEncoder(w).Encode(&snapshot{Version: snapshotVersion, Schema: s})
}

// ReadSnapshot decodes a msgpack snapshot previously written by
// WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Schema, error) {
	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode schema snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("schema snapshot version %d is not supported", snap.Version)
	}
	if snap.Schema == nil {
		return nil, fmt.Errorf("schema snapshot has no schema payload")
	}
	return snap.Schema, nil
}

// LoadSnapshot reads a snapshot file from disk.
func LoadSnapshot(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// SaveSnapshot writes a snapshot file to disk.
func SaveSnapshot(path string, s *Schema) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSnapshot(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
