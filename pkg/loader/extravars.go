package loader

import (
	"strings"

	"mvdan.cc/sh/v3/shell"

	errUtils "github.com/andreatomassetti/ansible-variables/errors"
)

// extraVars is one -e/--extra-vars argument.
type extraVars struct {
	label string
	// path is set for @file arguments.
	path string
	vars map[string]any
}

// parseExtraVars reads the -e arguments in order. An argument is either
// @path to a YAML or JSON file, an inline YAML or JSON mapping, or
// shell-quoted key=value pairs.
func parseExtraVars(args []string) ([]extraVars, error) {
	out := make([]extraVars, 0, len(args))
	for _, arg := range args {
		ev, err := parseExtraVarsArg(strings.TrimSpace(arg))
		if err != nil {
			return nil, err
		}
		if ev != nil {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func parseExtraVarsArg(arg string) (*extraVars, error) {
	switch {
	case arg == "":
		return nil, nil
	case strings.HasPrefix(arg, "@"):
		path := arg[1:]
		vars, err := readVarsFile(path)
		if err != nil {
			return nil, errUtils.Build(err).
				WithSentinel(errUtils.ErrInvalidExtraVars).
				WithHintf("Extra vars file `%s` must be a YAML or JSON mapping", path).
				WithExitCode(errUtils.ExitCodeOptionsError).
				Err()
		}
		return &extraVars{label: "extra vars " + arg, path: path, vars: vars}, nil
	case strings.HasPrefix(arg, "{"):
		vars, err := parseVars("extra vars", []byte(arg))
		if err != nil {
			return nil, errUtils.Build(err).
				WithSentinel(errUtils.ErrInvalidExtraVars).
				WithExitCode(errUtils.ExitCodeOptionsError).
				Err()
		}
		return &extraVars{label: "extra vars", vars: vars}, nil
	default:
		vars, err := parseKeyValues(arg)
		if err != nil {
			return nil, err
		}
		return &extraVars{label: "extra vars", vars: vars}, nil
	}
}

// parseKeyValues parses "a=1 b='two words'". Values stay strings.
func parseKeyValues(arg string) (map[string]any, error) {
	fields, err := shell.Fields(arg, func(name string) string { return "$" + name })
	if err != nil {
		return nil, invalidExtraVars(arg, err.Error())
	}

	vars := make(map[string]any, len(fields))
	for _, field := range fields {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			return nil, invalidExtraVars(arg, "expected key=value, got "+field)
		}
		vars[key] = value
	}
	return vars, nil
}

func invalidExtraVars(arg, explanation string) error {
	return errUtils.Wrapf(errUtils.ErrInvalidExtraVars, "%q", arg).
		WithExplanation(explanation).
		WithHint("Use `-e key=value`, `-e '{\"key\": \"value\"}'` or `-e @vars.yml`").
		WithExitCode(errUtils.ExitCodeOptionsError).
		Err()
}
