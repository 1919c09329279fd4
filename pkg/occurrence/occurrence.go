// Package occurrence finds every vars file in a host's source registry that
// defines a variable at the top level.
package occurrence

import (
	"github.com/samber/lo"

	errUtils "github.com/andreatomassetti/ansible-variables/errors"
	"github.com/andreatomassetti/ansible-variables/pkg/filesystem"
	log "github.com/andreatomassetti/ansible-variables/pkg/logger"
	"github.com/andreatomassetti/ansible-variables/pkg/schema"
	"github.com/andreatomassetti/ansible-variables/pkg/textscan"
)

// Locator scans registry files for textual variable definitions.
type Locator struct {
	fs filesystem.FileSystem
}

// Option configures a Locator.
type Option func(*Locator)

// WithFileSystem replaces the host file system.
func WithFileSystem(fs filesystem.FileSystem) Option {
	return func(l *Locator) {
		l.fs = fs
	}
}

// NewLocator creates a Locator reading from the host file system by default.
func NewLocator(opts ...Option) *Locator {
	l := &Locator{fs: filesystem.NewOSFileSystem()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Result is the outcome of one occurrence query.
type Result struct {
	// Occurrences are ordered by precedence, highest first.
	Occurrences []schema.Occurrence
	// Failures lists the candidate files that could not be scanned.
	Failures []schema.ScanFailure
}

// Paths returns the files of the occurrences, highest precedence first.
func (r *Result) Paths() []string {
	if r == nil {
		return nil
	}
	return lo.Map(r.Occurrences, func(o schema.Occurrence, _ int) string { return o.Path })
}

// Find returns the files in registry that define name at the top level.
// Every candidate is scanned; unreadable files are reported in Failures and
// do not stop the scan.
func (l *Locator) Find(registry *schema.Registry, name string) *Result {
	result := &Result{}
	candidates := registry.Files()

	for _, source := range candidates {
		data, err := l.fs.ReadFile(source.Path)
		if err != nil {
			scanErr := errUtils.Wrapf(errUtils.ErrOccurrenceScan, "%s", source.Path).
				WithFile(source.Path).
				WithVariable(name).
				WithExplanation(err.Error()).
				Err()
			log.Warn("Skipping unreadable vars file", "file", source.Path, "err", err)
			result.Failures = append(result.Failures, schema.ScanFailure{Path: source.Path, Err: scanErr})
			continue
		}

		block, found := textscan.FindBlock(textscan.SplitLines(data), name)
		if !found {
			continue
		}
		log.Trace("Found definition block", "variable", name, "file", source.Path, "line", block.Start+1, "lines", block.Len())

		result.Occurrences = append(result.Occurrences, schema.Occurrence{
			Name:      name,
			Path:      source.Path,
			Label:     source.Label,
			Rank:      source.Rank,
			StartLine: block.Start + 1,
			EndLine:   block.End + 1,
		})
	}

	log.Trace("Scanned vars files", "host", registry.Host().String(), "variable", name, "candidates", len(candidates), "found", len(result.Occurrences))
	return result
}
