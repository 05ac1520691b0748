package artifacts

import (
	"encoding/hex"
	"sort"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/tidwall/gjson"

	harnesstypes "github.com/EscanBE/erc20harness/types"
)

// linkPlaceholderPrefix starts every unresolved library slot in solc output.
const linkPlaceholderPrefix = "__"

// LinkReference is a byte range of the creation code reserved for a library address.
type LinkReference struct {
	Source  string
	Library string
	Start   int
	Length  int
}

// Artifact is a compiled contract in the Hardhat artifact format.
type Artifact struct {
	ContractName     string
	SourceName       string
	ABI              abi.ABI
	Bytecode         string // hex without 0x, may contain link placeholders
	DeployedBytecode string // hex without 0x
	LinkReferences   []LinkReference
}

// Parse decodes a Hardhat artifact JSON document.
func Parse(bz []byte) (*Artifact, error) {
	if !gjson.ValidBytes(bz) {
		return nil, errorsmod.Wrap(harnesstypes.ErrInvalidArtifact, "not a valid json document")
	}

	doc := gjson.ParseBytes(bz)

	artifact := &Artifact{
		ContractName:     doc.Get("contractName").String(),
		SourceName:       doc.Get("sourceName").String(),
		Bytecode:         strip0x(doc.Get("bytecode").String()),
		DeployedBytecode: strip0x(doc.Get("deployedBytecode").String()),
	}

	abiJSON := doc.Get("abi")
	if !abiJSON.IsArray() {
		return nil, errorsmod.Wrapf(harnesstypes.ErrInvalidArtifact, "missing abi in artifact of %q", artifact.ContractName)
	}

	parsedABI, err := abi.JSON(strings.NewReader(abiJSON.Raw))
	if err != nil {
		return nil, errorsmod.Wrapf(harnesstypes.ErrInvalidArtifact, "bad abi of %q: %s", artifact.ContractName, err)
	}
	artifact.ABI = parsedABI

	var refErr error
	doc.Get("linkReferences").ForEach(func(source, libraries gjson.Result) bool {
		libraries.ForEach(func(library, refs gjson.Result) bool {
			refs.ForEach(func(_, ref gjson.Result) bool {
				start, length := ref.Get("start"), ref.Get("length")
				if !start.Exists() || !length.Exists() {
					refErr = errorsmod.Wrapf(harnesstypes.ErrInvalidArtifact, "incomplete link reference to %s", library.String())
					return false
				}
				artifact.LinkReferences = append(artifact.LinkReferences, LinkReference{
					Source:  source.String(),
					Library: library.String(),
					Start:   int(start.Int()),
					Length:  int(length.Int()),
				})
				return true
			})
			return refErr == nil
		})
		return refErr == nil
	})
	if refErr != nil {
		return nil, refErr
	}

	for _, ref := range artifact.LinkReferences {
		if ref.Start < 0 || ref.Length != common.AddressLength || 2*(ref.Start+ref.Length) > len(artifact.Bytecode) {
			return nil, errorsmod.Wrapf(
				harnesstypes.ErrInvalidArtifact,
				"link reference to %s out of range: start %d, length %d", ref.Library, ref.Start, ref.Length,
			)
		}
	}

	return artifact, nil
}

// LibraryNames returns the sorted unique names of the libraries the creation code links to.
func (a *Artifact) LibraryNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, ref := range a.LinkReferences {
		if _, found := seen[ref.Library]; found {
			continue
		}
		seen[ref.Library] = struct{}{}
		names = append(names, ref.Library)
	}
	sort.Strings(names)
	return names
}

// Link writes the library addresses into the creation code, in place.
// Libraries not present in the map are left unresolved.
func (a *Artifact) Link(libraries map[string]common.Address) {
	code := []byte(a.Bytecode)
	for _, ref := range a.LinkReferences {
		address, found := libraries[ref.Library]
		if !found {
			continue
		}
		copy(code[2*ref.Start:2*(ref.Start+ref.Length)], hex.EncodeToString(address.Bytes()))
	}
	a.Bytecode = string(code)
}

// Bin returns the creation code, failing if any library is still unlinked.
func (a *Artifact) Bin() ([]byte, error) {
	if strings.Contains(a.Bytecode, linkPlaceholderPrefix) {
		return nil, errorsmod.Wrapf(harnesstypes.ErrUnlinkedLibrary, "%s links to %s", a.ContractName, strings.Join(a.LibraryNames(), ", "))
	}

	bin, err := hex.DecodeString(a.Bytecode)
	if err != nil {
		return nil, errorsmod.Wrapf(harnesstypes.ErrInvalidArtifact, "bad bytecode of %s: %s", a.ContractName, err)
	}
	if len(bin) == 0 {
		return nil, errorsmod.Wrapf(harnesstypes.ErrInvalidArtifact, "%s has no bytecode, is it abstract or an interface?", a.ContractName)
	}

	return bin, nil
}

func strip0x(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}
