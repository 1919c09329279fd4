package errors

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors of the resolution and remediation engine.
var (
	ErrInvalidTarget          = errors.New("no host matches the requested pattern")
	ErrMissingHost            = errors.New("a host pattern is required")
	ErrSourceLoad             = errors.New("failed to load variable source")
	ErrOccurrenceScan         = errors.New("failed to scan file for variable definitions")
	ErrRemoval                = errors.New("failed to remove variable definition")
	ErrInconsistentPrecedence = errors.New("authoritative occurrence does not match the resolved source")
	ErrDuplicatesRemaining    = errors.New("one or more duplicate definitions could not be removed")
	ErrFileLocked             = errors.New("file is locked by another process")
	ErrMergedValue            = errors.New("resolved value is merged from the duplicate definitions")
)

// Inventory and engine errors.
var (
	ErrInventoryNotFound    = errors.New("inventory source not found")
	ErrInventoryParse       = errors.New("failed to parse inventory")
	ErrInvalidHostRange     = errors.New("invalid host range")
	ErrInvalidPattern       = errors.New("invalid host pattern")
	ErrInvalidExtraVars     = errors.New("invalid extra vars")
	ErrInvalidHashBehaviour = errors.New("invalid hash behaviour")
	ErrInvalidVarsFile      = errors.New("vars file must contain a mapping at the top level")
)

// CLI and configuration errors.
var (
	ErrInvalidOutputFormat = errors.New("invalid output format")
	ErrInvalidColorMode    = errors.New("invalid color mode")
	ErrLoadConfig          = errors.New("failed to load configuration")
)

// ExitCodeOptionsError is the exit code used for invalid targets and options,
// matching the convention of the ansible command line tools.
const ExitCodeOptionsError = 5
