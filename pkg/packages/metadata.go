package packages

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/lerenn/release-manager/pkg/fs"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=metadata.go -destination=mocks/metadata.gen.go -package=mocks

// MetadataFile is the name of the per-package metadata file.
const MetadataFile = "package.json"

// Metadata is the persisted package metadata.
type Metadata struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Description      string            `json:"description,omitempty"`
	Main             string            `json:"main,omitempty"`
	Module           string            `json:"module,omitempty"`
	Types            string            `json:"types,omitempty"`
	Exports          json.RawMessage   `json:"exports,omitempty"`
	Files            []string          `json:"files,omitempty"`
	Keywords         []string          `json:"keywords,omitempty"`
	Author           json.RawMessage   `json:"author,omitempty"`
	License          string            `json:"license,omitempty"`
	Repository       json.RawMessage   `json:"repository,omitempty"`
	Homepage         string            `json:"homepage,omitempty"`
	SideEffects      json.RawMessage   `json:"sideEffects,omitempty"`
	Dependencies     map[string]string `json:"dependencies,omitempty"`
	PeerDependencies map[string]string `json:"peerDependencies,omitempty"`
	DevDependencies  map[string]string `json:"devDependencies,omitempty"`
	Scripts          map[string]string `json:"scripts,omitempty"`
	Private          bool              `json:"private,omitempty"`
}

// Manifest is the metadata written next to the build output for publishing.
// It carries no development-only fields.
type Manifest struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Description      string            `json:"description,omitempty"`
	Main             string            `json:"main,omitempty"`
	Module           string            `json:"module,omitempty"`
	Types            string            `json:"types,omitempty"`
	Exports          json.RawMessage   `json:"exports,omitempty"`
	Files            []string          `json:"files,omitempty"`
	Keywords         []string          `json:"keywords,omitempty"`
	Author           json.RawMessage   `json:"author,omitempty"`
	License          string            `json:"license,omitempty"`
	Repository       json.RawMessage   `json:"repository,omitempty"`
	Homepage         string            `json:"homepage,omitempty"`
	SideEffects      json.RawMessage   `json:"sideEffects,omitempty"`
	Dependencies     map[string]string `json:"dependencies,omitempty"`
	PeerDependencies map[string]string `json:"peerDependencies,omitempty"`
}

// NewManifest derives the publish manifest from the source metadata at the given version.
func NewManifest(meta Metadata, version string) Manifest {
	return Manifest{
		Name:             meta.Name,
		Version:          version,
		Description:      meta.Description,
		Main:             meta.Main,
		Module:           meta.Module,
		Types:            meta.Types,
		Exports:          meta.Exports,
		Files:            meta.Files,
		Keywords:         meta.Keywords,
		Author:           meta.Author,
		License:          meta.License,
		Repository:       meta.Repository,
		Homepage:         meta.Homepage,
		SideEffects:      meta.SideEffects,
		Dependencies:     meta.Dependencies,
		PeerDependencies: meta.PeerDependencies,
	}
}

// Store reads and writes package metadata files.
type Store interface {
	// Read parses the metadata file of the package rooted at dir.
	Read(dir string) (Metadata, error)

	// WriteVersion replaces the version of the package rooted at dir, keeping every other field.
	WriteVersion(dir, version string) error

	// WriteManifest writes a publish manifest into dir.
	WriteManifest(dir string, manifest Manifest) error
}

type jsonStore struct {
	fs fs.FS
}

// NewStore creates a Store backed by package.json files.
func NewStore(fsys fs.FS) Store {
	return &jsonStore{fs: fsys}
}

func (s *jsonStore) Read(dir string) (Metadata, error) {
	path := filepath.Join(dir, MetadataFile)
	data, err := s.fs.ReadFile(path)
	if err != nil {
		if s.fs.IsNotExist(err) {
			return Metadata{}, fmt.Errorf("%w: %s", ErrMetadataNotFound, path)
		}
		return Metadata{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("%w: %s: %w", ErrMetadataParse, path, err)
	}
	return meta, nil
}

func (s *jsonStore) WriteVersion(dir, version string) error {
	path := filepath.Join(dir, MetadataFile)
	data, err := s.fs.ReadFile(path)
	if err != nil {
		if s.fs.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrMetadataNotFound, path)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	updated, err := setVersion(data, version)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return s.fs.WriteFileAtomic(path, updated, 0644)
}

func (s *jsonStore) WriteManifest(dir string, manifest Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return s.fs.WriteFileAtomic(filepath.Join(dir, MetadataFile), append(data, '\n'), 0644)
}

var versionField = regexp.MustCompile(`("version"\s*:\s*)"[^"]*"`)

// setVersion edits the version in place so formatting and key order survive.
// It falls back to a full re-encode when the in-place edit does not land on the top-level field.
func setVersion(data []byte, version string) ([]byte, error) {
	if loc := versionField.FindSubmatchIndex(data); loc != nil {
		candidate := make([]byte, 0, len(data)+len(version))
		candidate = append(candidate, data[:loc[3]]...)
		candidate = append(candidate, strconv.Quote(version)...)
		candidate = append(candidate, data[loc[1]:]...)

		var probe struct {
			Version string `json:"version"`
		}
		if json.Unmarshal(candidate, &probe) == nil && probe.Version == version {
			return candidate, nil
		}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMetadataParse, err)
	}
	encoded, err := json.Marshal(version)
	if err != nil {
		return nil, err
	}
	doc["version"] = encoded
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
