// Package artifact loads compiled contract artifacts in the Hardhat JSON
// format. Bytecode and ABI are passed through untouched; nothing checks that
// they belong together.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrInvalidArtifact wraps every artifact decoding failure.
var ErrInvalidArtifact = errors.New("invalid contract artifact")

// Artifact is a compiled contract.
type Artifact struct {
	ContractName     string
	ABI              abi.ABI
	Bytecode         []byte
	DeployedBytecode []byte
}

type hardhatArtifact struct {
	ContractName     string          `json:"contractName"`
	ABI              json.RawMessage `json:"abi"`
	Bytecode         string          `json:"bytecode"`
	DeployedBytecode string          `json:"deployedBytecode"`
}

// New builds an artifact from deployed code and an ABI JSON document.
func New(name string, deployedCode []byte, abiJSON string) (*Artifact, error) {
	if abiJSON == "" {
		abiJSON = "[]"
	}
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("%w: %s abi: %v", ErrInvalidArtifact, name, err)
	}
	code := make([]byte, len(deployedCode))
	copy(code, deployedCode)
	return &Artifact{
		ContractName:     name,
		ABI:              parsed,
		DeployedBytecode: code,
	}, nil
}

// Parse decodes a Hardhat artifact document.
func Parse(data []byte) (*Artifact, error) {
	var raw hardhatArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if raw.ContractName == "" {
		return nil, fmt.Errorf("%w: missing contractName", ErrInvalidArtifact)
	}

	abiJSON := "[]"
	if len(raw.ABI) > 0 {
		abiJSON = string(raw.ABI)
	}
	art, err := New(raw.ContractName, nil, abiJSON)
	if err != nil {
		return nil, err
	}

	if art.Bytecode, err = decodeCode(raw.Bytecode); err != nil {
		return nil, fmt.Errorf("%w: %s bytecode: %v", ErrInvalidArtifact, raw.ContractName, err)
	}
	if art.DeployedBytecode, err = decodeCode(raw.DeployedBytecode); err != nil {
		return nil, fmt.Errorf("%w: %s deployedBytecode: %v", ErrInvalidArtifact, raw.ContractName, err)
	}
	return art, nil
}

func decodeCode(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

// Load reads an artifact file.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return Parse(data)
}

// LoadDir reads <dir>/<name>.json.
func LoadDir(dir, name string) (*Artifact, error) {
	return Load(filepath.Join(dir, name+".json"))
}
