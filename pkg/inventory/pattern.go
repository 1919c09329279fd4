package inventory

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/lo"

	errUtils "github.com/andreatomassetti/ansible-variables/errors"
	"github.com/andreatomassetti/ansible-variables/pkg/schema"
)

const (
	regexPrefix     = "~"
	excludePrefix   = "!"
	intersectPrefix = "&"
	globChars       = "*?["
)

var subscriptPattern = regexp.MustCompile(`^(.+)\[(-?\d+)(?::(-?\d*))?\]$`)

// Hosts returns the hosts selected by pattern in inventory order.
//
// A pattern is a list of terms separated by ',' or ':'. A term is "all" or
// "*", a group or host name, a glob, or a regular expression prefixed with
// '~', optionally followed by a [start:end] subscript. Terms prefixed with
// '&' intersect and terms prefixed with '!' exclude.
func (inv *Inventory) Hosts(pattern string) ([]*schema.Host, error) {
	names, err := inv.match(pattern)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errUtils.Build(errUtils.ErrInvalidTarget).
			WithContext("pattern", pattern).
			WithHintf("No hosts matched `%s` in %s", pattern, strings.Join(inv.sources, ", ")).
			WithHint("Check the host pattern and the inventory passed with `-i`").
			WithExitCode(errUtils.ExitCodeOptionsError).
			Err()
	}

	hosts := make([]*schema.Host, 0, len(names))
	for _, name := range names {
		h, _ := inv.Host(name)
		hosts = append(hosts, h)
	}
	return hosts, nil
}

func (inv *Inventory) match(pattern string) ([]string, error) {
	var include, intersect, exclude []string
	for _, term := range splitPattern(pattern) {
		switch {
		case strings.HasPrefix(term, excludePrefix):
			exclude = append(exclude, term[1:])
		case strings.HasPrefix(term, intersectPrefix):
			intersect = append(intersect, term[1:])
		default:
			include = append(include, term)
		}
	}
	if len(include) == 0 && (len(intersect) > 0 || len(exclude) > 0) {
		include = []string{AllGroup}
	}

	selected := map[string]struct{}{}
	for _, term := range include {
		hosts, err := inv.hostsForTerm(term)
		if err != nil {
			return nil, err
		}
		for _, h := range hosts {
			selected[h] = struct{}{}
		}
	}
	for _, term := range intersect {
		hosts, err := inv.hostsForTerm(term)
		if err != nil {
			return nil, err
		}
		keep := lo.Keyify(hosts)
		for h := range selected {
			if _, ok := keep[h]; !ok {
				delete(selected, h)
			}
		}
	}
	for _, term := range exclude {
		hosts, err := inv.hostsForTerm(term)
		if err != nil {
			return nil, err
		}
		for _, h := range hosts {
			delete(selected, h)
		}
	}

	return inv.inOrder(selected), nil
}

// splitPattern splits on ',' when present and on ':' otherwise.
// Colons inside brackets and regular expressions do not split.
func splitPattern(pattern string) []string {
	var terms []string
	if strings.Contains(pattern, ",") {
		terms = strings.Split(pattern, ",")
	} else if strings.HasPrefix(strings.TrimSpace(pattern), regexPrefix) {
		terms = []string{pattern}
	} else {
		depth, start := 0, 0
		for i, c := range pattern {
			switch c {
			case '[':
				depth++
			case ']':
				depth--
			case ':':
				if depth == 0 {
					terms = append(terms, pattern[start:i])
					start = i + 1
				}
			}
		}
		terms = append(terms, pattern[start:])
	}

	return lo.Compact(lo.Map(terms, func(t string, _ int) string { return strings.TrimSpace(t) }))
}

func (inv *Inventory) hostsForTerm(term string) ([]string, error) {
	if m := subscriptPattern.FindStringSubmatch(term); m != nil {
		hosts, err := inv.hostsForName(m[1])
		if err != nil {
			return nil, err
		}
		if len(hosts) > 0 {
			return subscript(hosts, m[2], m[3], strings.Contains(term[len(m[1]):], ":")), nil
		}
	}
	return inv.hostsForName(term)
}

func (inv *Inventory) hostsForName(term string) ([]string, error) {
	if term == AllGroup || term == "*" {
		return inv.hostsOfGroup(AllGroup), nil
	}

	matcher, isExpr, err := compileTerm(term)
	if err != nil {
		return nil, err
	}

	set := map[string]struct{}{}
	groupMatched := false
	for _, name := range inv.groupOrder {
		if matcher(name) {
			groupMatched = true
			for _, h := range inv.hostsOfGroup(name) {
				set[h] = struct{}{}
			}
		}
	}
	if !groupMatched || isExpr {
		for _, name := range inv.hostOrder {
			if matcher(name) {
				set[name] = struct{}{}
			}
		}
	}
	return inv.inOrder(set), nil
}

// compileTerm returns a name matcher for term and whether term is a glob or
// a regular expression rather than a literal name.
func compileTerm(term string) (func(string) bool, bool, error) {
	if strings.HasPrefix(term, regexPrefix) {
		re, err := regexp.Compile("^(?:" + term[len(regexPrefix):] + ")")
		if err != nil {
			return nil, false, invalidPattern(term, err)
		}
		return re.MatchString, true, nil
	}

	if strings.ContainsAny(term, globChars) {
		g, err := glob.Compile(term)
		if err != nil {
			return nil, false, invalidPattern(term, err)
		}
		return g.Match, true, nil
	}

	return func(name string) bool { return name == term }, false, nil
}

func invalidPattern(term string, err error) error {
	return errUtils.Wrapf(errUtils.ErrInvalidPattern, "%s", term).
		WithExplanation(err.Error()).
		WithExitCode(errUtils.ExitCodeOptionsError).
		Err()
}

// subscript selects hosts[start] or the inclusive range hosts[start:end].
func subscript(hosts []string, startStr, endStr string, isRange bool) []string {
	n := len(hosts)
	start, _ := strconv.Atoi(startStr)
	if start < 0 {
		start += n
	}
	if start < 0 || start >= n {
		return nil
	}
	if !isRange {
		return []string{hosts[start]}
	}

	end := n - 1
	if endStr != "" {
		end, _ = strconv.Atoi(endStr)
		if end < 0 {
			end += n
		}
	}
	if end >= n {
		end = n - 1
	}
	if end < start {
		return nil
	}
	return append([]string(nil), hosts[start:end+1]...)
}
