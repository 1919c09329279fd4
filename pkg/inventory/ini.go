package inventory

import (
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
	"mvdan.cc/sh/v3/shell"
)

const (
	varsSuffix     = ":vars"
	childrenSuffix = ":children"
)

// iniLoadOptions turn every line of a section into a key of its own:
// no delimiter is ever found, so each line is read as a boolean key.
// Host lines and var lines are then split here.
var iniLoadOptions = ini.LoadOptions{
	AllowBooleanKeys:         true,
	KeyValueDelimiters:       "\x00",
	IgnoreContinuation:       true,
	SpaceBeforeInlineComment: true,
	PreserveSurroundedQuote:  true,
}

// parseINI reads the INI inventory format:
//
//	web1 ansible_host=10.0.0.1
//
//	[web]
//	web[01:03].example.com ansible_user=deploy
//
//	[web:vars]
//	http_port = 8080
//
//	[prod:children]
//	web
func parseINI(inv *Inventory, path string, data []byte) error {
	cfg, err := ini.LoadSources(iniLoadOptions, data)
	if err != nil {
		return errors.Wrap(err, "invalid INI inventory")
	}

	for _, section := range cfg.Sections() {
		name := section.Name()
		lines := section.KeyStrings()

		switch {
		case name == ini.DefaultSection:
			for _, line := range lines {
				if err := parseHostLine(inv, UngroupedGroup, path, line); err != nil {
					return err
				}
			}
		case strings.HasSuffix(name, varsSuffix):
			group := strings.TrimSuffix(name, varsSuffix)
			vars, err := parseVarLines(lines)
			if err != nil {
				return errors.Wrapf(err, "section [%s]", name)
			}
			inv.setGroupVars(group, path, vars)
		case strings.HasSuffix(name, childrenSuffix):
			group := strings.TrimSuffix(name, childrenSuffix)
			inv.addGroup(group)
			for _, child := range lines {
				if err := inv.addChild(group, strings.TrimSpace(child)); err != nil {
					return err
				}
			}
		case strings.Contains(name, ":"):
			return errors.Newf("section [%s] has an unknown type", name)
		default:
			inv.addGroup(name)
			for _, line := range lines {
				if err := parseHostLine(inv, name, path, line); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// keepVariable leaves $NAME references in host lines unexpanded.
func keepVariable(name string) string {
	return "$" + name
}

func parseHostLine(inv *Inventory, group, path, line string) error {
	fields, err := shell.Fields(line, keepVariable)
	if err != nil {
		return errors.Wrapf(err, "host line %q", line)
	}
	if len(fields) == 0 {
		return nil
	}

	vars := map[string]any{}
	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			return errors.Newf("host line %q: expected key=value, got %q", line, field)
		}
		vars[key] = iniValue(value)
	}

	names, port, err := expandHostPattern(fields[0])
	if err != nil {
		return err
	}
	if port != "" {
		vars = withPort(vars, port)
	}
	for _, name := range names {
		inv.addHost(group, name, path, vars)
	}
	return nil
}

func parseVarLines(lines []string) (map[string]any, error) {
	vars := make(map[string]any, len(lines))
	for _, line := range lines {
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Newf("expected key=value, got %q", line)
		}
		vars[key] = iniValue(strings.TrimSpace(value))
	}
	return vars, nil
}

// iniValue types an INI value the way a YAML scalar or flow sequence would
// be typed. Anything else, mappings included, stays a string.
func iniValue(raw string) any {
	if raw == "" {
		return ""
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &node); err != nil || len(node.Content) == 0 {
		return raw
	}
	value := node.Content[0]
	if value.Kind == yaml.MappingNode || value.Tag == "!!null" {
		return raw
	}

	var out any
	if err := value.Decode(&out); err != nil {
		return raw
	}
	return out
}
