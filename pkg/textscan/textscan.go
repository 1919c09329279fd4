// Package textscan implements the line-oriented scan used to find and cut
// top-level variable blocks in vars files without parsing them.
//
// The scan is best effort. A block is a column-0 line starting with
// "<name>:" followed by every line indented with a space or a tab.
// Flow collections that continue at column 0 and keys that only look like
// definitions inside string values are not handled specially.
//
// Block sequences written at column 0 are not continuation lines either:
//
//	ntp:
//	- a.pool.ntp.org
//	- b.pool.ntp.org
//
// Only "ntp:" belongs to the block, so cutting it leaves the "- " items
// behind as a top-level sequence the file can no longer be parsed with.
package textscan

import (
	"bytes"
	"strings"
)

const keySep = ":"

// SplitLines splits data into lines, keeping each line's terminator
// ("\n" or "\r\n") so the lines can be written back byte for byte.
func SplitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}

	lines := make([]string, 0, bytes.Count(data, []byte{'\n'})+1)
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			lines = append(lines, string(data))
			break
		}
		lines = append(lines, string(data[:i+1]))
		data = data[i+1:]
	}
	return lines
}

// DefinitionPrefix returns the literal a definition line of name starts with.
func DefinitionPrefix(name string) string {
	return name + keySep
}

// IsDefinitionStart reports whether line defines name at the top level.
// The key must start at column 0 and be followed immediately by ':'.
func IsDefinitionStart(line, name string) bool {
	if name == "" {
		return false
	}
	return strings.HasPrefix(line, DefinitionPrefix(name))
}

// IsContinuation reports whether line continues the block above it.
func IsContinuation(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

// Block is the 0-based, inclusive line span of a definition block.
type Block struct {
	Start int
	End   int
}

// Len returns the number of lines in the block.
func (b Block) Len() int {
	return b.End - b.Start + 1
}

// blockScanState tracks the scan through one file.
type blockScanState struct {
	inBlock bool
	block   Block
	found   bool
}

// processLine advances the scan by one line. It returns false once the
// first block has been closed and no more lines need to be seen.
func (s *blockScanState) processLine(lineNum int, line, name string) bool {
	if s.inBlock {
		if IsContinuation(line) {
			s.block.End = lineNum
			return true
		}
		s.inBlock = false
		return false
	}

	if IsDefinitionStart(line, name) {
		s.inBlock = true
		s.found = true
		s.block = Block{Start: lineNum, End: lineNum}
	}
	return true
}

// FindBlock returns the first top-level block that defines name.
func FindBlock(lines []string, name string) (Block, bool) {
	state := &blockScanState{}
	for lineNum, line := range lines {
		if !state.processLine(lineNum, line, name) {
			break
		}
	}
	return state.block, state.found
}
