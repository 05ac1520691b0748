package artifacts

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	errorsmod "cosmossdk.io/errors"

	harnesstypes "github.com/EscanBE/erc20harness/types"
)

const (
	artifactExt      = ".json"
	debugArtifactExt = ".dbg.json"
)

// Store looks up compiled artifacts under a Hardhat artifacts directory.
type Store struct {
	root string
}

// NewStore returns a store rooted at dir, typically artifacts/contracts.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the directory the store reads from.
func (s *Store) Root() string {
	return s.root
}

// Load reads the artifact of a contract.
//
// A name containing ".sol" or ending in ".json" is a path relative to the root, like "MockERC20.sol/MockERC20.json".
// Any other name is the contract name, searched through the whole tree.
func (s *Store) Load(name string) (*Artifact, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	bz, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errorsmod.Wrapf(harnesstypes.ErrArtifactNotFound, "%s (%s)", name, path)
		}
		return nil, errorsmod.Wrapf(harnesstypes.ErrInvalidArtifact, "failed to read %s: %s", path, err)
	}

	artifact, err := Parse(bz)
	if err != nil {
		return nil, errorsmod.Wrapf(err, "artifact %s", path)
	}

	if artifact.ContractName == "" {
		artifact.ContractName = strings.TrimSuffix(filepath.Base(path), artifactExt)
	}

	return artifact, nil
}

// Has reports whether an artifact for name exists.
func (s *Store) Has(name string) bool {
	path, err := s.resolve(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (s *Store) resolve(name string) (string, error) {
	if strings.Contains(name, ".sol") || strings.HasSuffix(name, artifactExt) {
		return filepath.Join(s.root, filepath.FromSlash(name)), nil
	}

	wantFile := name + artifactExt
	var found string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), debugArtifactExt) {
			return nil
		}
		if d.Name() == wantFile {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", errorsmod.Wrapf(harnesstypes.ErrArtifactNotFound, "failed to search %s for %s: %s", s.root, name, err)
	}

	if found == "" {
		return "", errorsmod.Wrapf(harnesstypes.ErrArtifactNotFound, "no %s under %s", wantFile, s.root)
	}

	return found, nil
}
