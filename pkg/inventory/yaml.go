package inventory

import (
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	log "github.com/andreatomassetti/ansible-variables/pkg/logger"
)

// yamlParser reads the YAML inventory format:
//
//	all:
//	  hosts:
//	    web1:
//	      ansible_host: 10.0.0.1
//	  vars: {}
//	  children:
//	    web:
//	      hosts:
//	        web[01:03]:
type yamlParser struct {
	inv  *Inventory
	path string
}

func parseYAML(inv *Inventory, path string, data []byte) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return errors.Wrap(err, "invalid YAML inventory")
	}
	if len(root.Content) == 0 {
		return nil
	}

	doc := root.Content[0]
	if isNull(doc) {
		return nil
	}
	if doc.Kind != yaml.MappingNode {
		return errors.Newf("line %d: the top level of a YAML inventory must be a mapping of groups", doc.Line)
	}

	p := &yamlParser{inv: inv, path: path}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if err := p.group(doc.Content[i].Value, doc.Content[i+1], ""); err != nil {
			return err
		}
	}
	return nil
}

func (p *yamlParser) group(name string, node *yaml.Node, parent string) error {
	p.inv.addGroup(name)
	if parent != "" {
		if err := p.inv.addChild(parent, name); err != nil {
			return err
		}
	}
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return errors.Newf("line %d: group %s must be a mapping", node.Line, name)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "hosts":
			if err := p.hosts(name, value); err != nil {
				return err
			}
		case "vars":
			vars, err := decodeVars(value)
			if err != nil {
				return errors.Wrapf(err, "vars of group %s", name)
			}
			p.inv.setGroupVars(name, p.path, vars)
		case "children":
			if err := p.children(name, value); err != nil {
				return err
			}
		default:
			log.Warn("Skipping unexpected key in inventory group", "file", p.path, "group", name, "key", key.Value)
		}
	}
	return nil
}

func (p *yamlParser) children(parent string, node *yaml.Node) error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return errors.Newf("line %d: children of group %s must be a mapping", node.Line, parent)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := p.group(node.Content[i].Value, node.Content[i+1], parent); err != nil {
			return err
		}
	}
	return nil
}

func (p *yamlParser) hosts(group string, node *yaml.Node) error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return errors.Newf("line %d: hosts of group %s must be a mapping", node.Line, group)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		pattern := node.Content[i].Value
		vars, err := decodeVars(node.Content[i+1])
		if err != nil {
			return errors.Wrapf(err, "vars of host %s", pattern)
		}

		names, port, err := expandHostPattern(pattern)
		if err != nil {
			return err
		}
		if port != "" {
			vars = withPort(vars, port)
		}
		for _, name := range names {
			p.inv.addHost(group, name, p.path, vars)
		}
	}
	return nil
}

func decodeVars(node *yaml.Node) (map[string]any, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.Newf("line %d: expected a mapping", node.Line)
	}
	vars := map[string]any{}
	if err := node.Decode(&vars); err != nil {
		return nil, err
	}
	return vars, nil
}

func isNull(node *yaml.Node) bool {
	return node == nil || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}
