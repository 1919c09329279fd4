// Package duplicate detects variables defined in more than one vars file and
// plans the removal of the shadowed definitions.
package duplicate

import (
	errUtils "github.com/andreatomassetti/ansible-variables/errors"
	log "github.com/andreatomassetti/ansible-variables/pkg/logger"
	"github.com/andreatomassetti/ansible-variables/pkg/schema"
)

// Remover deletes a variable block from a file.
type Remover interface {
	Remove(path, name string) error
}

// Detect builds a report for name when it occurs in two or more files.
// Occurrences must be ordered highest precedence first; the first one is
// authoritative.
func Detect(name string, occurrences []schema.Occurrence) *schema.DuplicateReport {
	if len(occurrences) < 2 {
		return nil
	}

	duplicates := make([]schema.Occurrence, len(occurrences)-1)
	copy(duplicates, occurrences[1:])

	return &schema.DuplicateReport{
		Name:          name,
		Authoritative: occurrences[0],
		Duplicates:    duplicates,
	}
}

// Verify checks that the authoritative occurrence is the file the resolved
// value came from. A value won by a file-less layer (extra vars, magic vars)
// or by an inventory file does not contradict the report.
func Verify(report *schema.DuplicateReport, winner schema.Source) error {
	if report == nil || !winner.HasPath() || !winner.VarsFile {
		return nil
	}
	if winner.Path == report.Authoritative.Path {
		return nil
	}

	return errUtils.Build(errUtils.ErrInconsistentPrecedence).
		WithVariable(report.Name).
		WithContext("resolved_from", winner.Path).
		WithContext("first_occurrence", report.Authoritative.Path).
		WithHintf("Variable `%s` resolves from %s but is first found in %s; no duplicate is removed",
			report.Name, winner.Path, report.Authoritative.Path).
		Err()
}

// VerifyUnmerged checks that no duplicate contributes to the resolved value.
// With hash_behaviour merge a mapping is the union of several definitions,
// and removing a lower one would drop its keys from the result.
func VerifyUnmerged(report *schema.DuplicateReport, contributors []schema.Source) error {
	if report == nil {
		return nil
	}
	for _, dup := range report.Duplicates {
		for _, c := range contributors {
			if !c.VarsFile || c.Path != dup.Path {
				continue
			}
			return errUtils.Build(errUtils.ErrMergedValue).
				WithVariable(report.Name).
				WithFile(dup.Path).
				WithHintf("Variable `%s` is merged from several files with `hash_behaviour: merge`; no duplicate is removed", report.Name).
				Err()
		}
	}
	return nil
}

// Plan returns one removal target per duplicate occurrence.
// The authoritative occurrence is never a target.
func Plan(reports ...*schema.DuplicateReport) []schema.RemovalTarget {
	var targets []schema.RemovalTarget
	for _, report := range reports {
		if report == nil {
			continue
		}
		for _, dup := range report.Duplicates {
			if dup.Path == report.Authoritative.Path {
				continue
			}
			targets = append(targets, schema.RemovalTarget{Path: dup.Path, Name: report.Name})
		}
	}
	return targets
}

// Apply removes each target in order and collects the outcome of every
// removal. A failed removal does not stop the remaining ones.
func Apply(targets []schema.RemovalTarget, remover Remover) []schema.RemovalResult {
	results := make([]schema.RemovalResult, 0, len(targets))
	for _, target := range targets {
		err := remover.Remove(target.Path, target.Name)
		if err != nil {
			log.Error("Failed to remove duplicate", "variable", target.Name, "file", target.Path, "err", err)
		} else {
			log.Info("Removed duplicate", "variable", target.Name, "file", target.Path)
		}
		results = append(results, schema.RemovalResult{Target: target, Err: err})
	}
	return results
}

// Failed returns the errors of the unsuccessful removals.
func Failed(results []schema.RemovalResult) []error {
	var errs []error
	for _, r := range results {
		if !r.OK() {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
