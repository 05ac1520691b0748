package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"
)

// Hand assembled contracts used to exercise deployment without a compiler.
const (
	// AnswerRuntime returns the 32-byte word 42 for any call.
	//
	//	PUSH1 0x2a PUSH1 0x00 MSTORE PUSH1 0x20 PUSH1 0x00 RETURN
	AnswerRuntime = "602a60005260206000f3"

	// AnswerBytecode is the creation code deploying AnswerRuntime.
	//
	//	PUSH1 0x0a PUSH1 0x0c PUSH1 0x00 CODECOPY PUSH1 0x0a PUSH1 0x00 RETURN
	AnswerBytecode = "600a600c600039600a6000f3" + AnswerRuntime

	// libraryUserInit deploys the 29 bytes runtime following it.
	//
	//	PUSH1 0x1d PUSH1 0x0c PUSH1 0x00 CODECOPY PUSH1 0x1d PUSH1 0x00 RETURN
	libraryUserInit = "601d600c600039601d6000f3"

	// libraryUserTail follows the PUSH20 of the linked address and returns it as a word.
	//
	//	PUSH1 0x00 MSTORE PUSH1 0x20 PUSH1 0x00 RETURN
	libraryUserTail = "60005260206000f3"

	// LibraryUserLinkStart is the byte offset of the library address in LibraryUserBytecode.
	LibraryUserLinkStart = 13
)

// LinkPlaceholder returns the solc placeholder of a fully qualified library name, e.g. "contracts/Lib.sol:Lib".
func LinkPlaceholder(fullyQualifiedName string) string {
	return "__$" + crypto.Keccak256Hash([]byte(fullyQualifiedName)).Hex()[2:36] + "$__"
}

// LibraryUserBytecode is the creation code of a contract whose runtime returns the address of its linked library.
func LibraryUserBytecode(fullyQualifiedName string) string {
	return libraryUserInit + "73" + LinkPlaceholder(fullyQualifiedName) + libraryUserTail
}

// ArtifactFixture describes a Hardhat artifact to write for a test.
type ArtifactFixture struct {
	ContractName string
	ABI          string
	Bytecode     string
	// LinkReferences maps a library name, defined in contracts/<name>.sol, to the byte offsets of its slots.
	LinkReferences map[string][]int
}

// WriteArtifact writes the fixture to <dir>/<ContractName>.sol/<ContractName>.json the way Hardhat lays out
// artifacts, and returns the path.
func WriteArtifact(t *testing.T, dir string, fixture ArtifactFixture) string {
	t.Helper()

	abiJSON := fixture.ABI
	if abiJSON == "" {
		abiJSON = "[]"
	}

	doc := `{"_format":"hh-sol-artifact-1"}`
	var err error
	doc, err = sjson.Set(doc, "contractName", fixture.ContractName)
	require.NoError(t, err)
	doc, err = sjson.Set(doc, "sourceName", "contracts/"+fixture.ContractName+".sol")
	require.NoError(t, err)
	doc, err = sjson.SetRaw(doc, "abi", abiJSON)
	require.NoError(t, err)
	doc, err = sjson.Set(doc, "bytecode", "0x"+fixture.Bytecode)
	require.NoError(t, err)
	doc, err = sjson.Set(doc, "deployedBytecode", "0x")
	require.NoError(t, err)
	doc, err = sjson.SetRaw(doc, "linkReferences", "{}")
	require.NoError(t, err)

	for library, offsets := range fixture.LinkReferences {
		refs := make([]string, 0, len(offsets))
		for _, start := range offsets {
			refs = append(refs, `{"start":`+strconv.Itoa(start)+`,"length":20}`)
		}
		path := "linkReferences." + escapePath("contracts/"+library+".sol") + "." + library
		doc, err = sjson.SetRaw(doc, path, "["+strings.Join(refs, ",")+"]")
		require.NoError(t, err)
	}

	path := filepath.Join(dir, fixture.ContractName+".sol", fixture.ContractName+".json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

// escapePath escapes the characters sjson treats as path syntax.
func escapePath(path string) string {
	return strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`).Replace(path)
}
