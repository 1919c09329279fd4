package resolver

// internalVars are the names Ansible itself injects into every host.
// They are hidden because they are never defined in a vars file.
var internalVars = map[string]struct{}{
	"ansible_diff_mode":         {},
	"ansible_config_file":       {},
	"ansible_facts":             {},
	"ansible_forks":             {},
	"ansible_inventory_sources": {},
	"ansible_limit":             {},
	"ansible_playbook_python":   {},
	"ansible_run_tags":          {},
	"ansible_skip_tags":         {},
	"ansible_verbosity":         {},
	"ansible_version":           {},
	"inventory_dir":             {},
	"inventory_file":            {},
	"inventory_hostname":        {},
	"inventory_hostname_short":  {},
	"groups":                    {},
	"group_names":               {},
	"omit":                      {},
	"playbook_dir":              {},
}

// IsInternal reports whether name is an internal variable.
func IsInternal(name string) bool {
	_, ok := internalVars[name]
	return ok
}

// InternalNames returns the internal variable names in no particular order.
func InternalNames() []string {
	names := make([]string, 0, len(internalVars))
	for name := range internalVars {
		names = append(names, name)
	}
	return names
}
