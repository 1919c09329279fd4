package inventory

import (
	"fmt"
	"strconv"
	"strings"

	errUtils "github.com/andreatomassetti/ansible-variables/errors"
)

const portVar = "ansible_port"

// expandHostPattern expands an inventory host entry such as
// "web[01:03].example.com:2222" into host names and an optional port.
func expandHostPattern(pattern string) ([]string, string, error) {
	name, port := splitPort(pattern)
	names, err := expandRanges(name)
	if err != nil {
		return nil, "", errUtils.Wrapf(errUtils.ErrInvalidHostRange, "%s", pattern).
			WithExplanation(err.Error()).
			WithHint("Ranges look like `web[01:10]`, `db-[a:f]` or `node[0:20:5]`").
			Err()
	}
	return names, port, nil
}

// splitPort splits a trailing ":<port>". IPv6 addresses, which contain more
// than one colon outside brackets, are left alone.
func splitPort(pattern string) (string, string) {
	tail := pattern
	if i := strings.LastIndexByte(pattern, ']'); i >= 0 {
		tail = pattern[i+1:]
	}
	if strings.Count(tail, ":") != 1 {
		return pattern, ""
	}

	i := strings.LastIndexByte(pattern, ':')
	port := pattern[i+1:]
	if _, err := strconv.Atoi(port); err != nil {
		return pattern, ""
	}
	return pattern[:i], port
}

func withPort(vars map[string]any, port string) map[string]any {
	out := make(map[string]any, len(vars)+1)
	for k, v := range vars {
		out[k] = v
	}
	n, _ := strconv.Atoi(port)
	out[portVar] = n
	return out
}

// expandRanges expands every [start:end(:stride)] range in pattern, left to right.
func expandRanges(pattern string) ([]string, error) {
	open := strings.IndexByte(pattern, '[')
	if open < 0 {
		if strings.IndexByte(pattern, ']') >= 0 {
			return nil, fmt.Errorf("unbalanced ']'")
		}
		return []string{pattern}, nil
	}
	closeIdx := strings.IndexByte(pattern[open:], ']')
	if closeIdx < 0 {
		return nil, fmt.Errorf("missing ']'")
	}
	closeIdx += open

	head, spec, tail := pattern[:open], pattern[open+1:closeIdx], pattern[closeIdx+1:]
	items, err := expandRange(spec)
	if err != nil {
		return nil, err
	}
	tails, err := expandRanges(tail)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(items)*len(tails))
	for _, item := range items {
		for _, t := range tails {
			out = append(out, head+item+t)
		}
	}
	return out, nil
}

func expandRange(spec string) ([]string, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("range [%s] must be start:end or start:end:stride", spec)
	}

	beg, end := parts[0], parts[1]
	stride := 1
	if len(parts) == 3 && parts[2] != "" {
		s, err := strconv.Atoi(parts[2])
		if err != nil || s < 1 {
			return nil, fmt.Errorf("stride %q must be a positive integer", parts[2])
		}
		stride = s
	}
	if beg == "" {
		beg = "0"
	}
	if end == "" {
		return nil, fmt.Errorf("range [%s] has no end", spec)
	}

	if b, errB := strconv.Atoi(beg); errB == nil {
		e, errE := strconv.Atoi(end)
		if errE != nil {
			return nil, fmt.Errorf("range [%s] mixes numbers and letters", spec)
		}
		return numericRange(beg, end, b, e, stride)
	}
	return alphaRange(spec, beg, end, stride)
}

func numericRange(beg, end string, b, e, stride int) ([]string, error) {
	if b > e {
		return nil, fmt.Errorf("range start %s is after end %s", beg, end)
	}

	width := 0
	if len(beg) > 1 && beg[0] == '0' {
		if len(beg) != len(end) {
			return nil, fmt.Errorf("zero padded range %s:%s must use equal lengths", beg, end)
		}
		width = len(beg)
	}

	var out []string
	for i := b; i <= e; i += stride {
		out = append(out, fmt.Sprintf("%0*d", width, i))
	}
	return out, nil
}

func alphaRange(spec, beg, end string, stride int) ([]string, error) {
	if len(beg) != 1 || len(end) != 1 || !isLetter(beg[0]) || !isLetter(end[0]) {
		return nil, fmt.Errorf("range [%s] must be numeric or single letters", spec)
	}
	if beg[0] > end[0] {
		return nil, fmt.Errorf("range start %s is after end %s", beg, end)
	}

	var out []string
	for c := int(beg[0]); c <= int(end[0]); c += stride {
		out = append(out, string(rune(c)))
	}
	return out, nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
