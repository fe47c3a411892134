package registry

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

// ErrSnapshotInvalid indicates a snapshot document that failed schema or
// definition validation.
var ErrSnapshotInvalid = errors.New("registry: snapshot invalid")

//go:embed snapshot_schema.json
var snapshotSchemaJSON []byte

var (
	snapshotSchemaOnce sync.Once
	snapshotSchema     *jsonschema.Schema
	snapshotSchemaErr  error
)

// Snapshot is the on-disk capability inventory. Snapshots are produced
// offline against the destination codebase; loading one is the only way
// component knowledge enters a run.
type Snapshot struct {
	Version     int                              `json:"version"`
	GeneratedAt string                           `json:"generatedAt,omitempty"`
	Components  []interfaces.ComponentDefinition `json:"components"`
}

// Parse validates raw snapshot JSON and builds a registry from it.
func Parse(data []byte) (*Registry, error) {
	compiled, err := compiledSnapshotSchema()
	if err != nil {
		return nil, err
	}

	var doc any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	if err := compiled.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotInvalid, schemaIssues(err))
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}

	reg := New()
	for _, def := range snapshot.Components {
		if err := reg.Register(def); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSnapshotInvalid, err)
		}
	}
	return reg, nil
}

// Load reads and parses a snapshot file from disk.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read snapshot %s: %w", path, err)
	}
	return Parse(data)
}

// LoadFS reads and parses a snapshot from an fs.FS, mainly for tests and
// embedded fixtures.
func LoadFS(fsys fs.FS, path string) (*Registry, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("registry: read snapshot %s: %w", path, err)
	}
	return Parse(data)
}

func compiledSnapshotSchema() (*jsonschema.Schema, error) {
	snapshotSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("snapshot_schema.json", bytes.NewReader(snapshotSchemaJSON)); err != nil {
			snapshotSchemaErr = err
			return
		}
		snapshotSchema, snapshotSchemaErr = compiler.Compile("snapshot_schema.json")
	})
	if snapshotSchemaErr != nil {
		return nil, fmt.Errorf("registry: compile snapshot schema: %w", snapshotSchemaErr)
	}
	return snapshotSchema, nil
}

// schemaIssues flattens a jsonschema validation error into one line per leaf
// cause so snapshot authors see every failing location at once.
func schemaIssues(err error) string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return err.Error()
	}
	var parts []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			location := strings.TrimSpace(node.InstanceLocation)
			if location == "" {
				location = "#"
			}
			parts = append(parts, fmt.Sprintf("%s: %s", location, strings.TrimSpace(node.Message)))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return strings.Join(parts, "; ")
}
