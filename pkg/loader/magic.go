package loader

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/andreatomassetti/ansible-variables/pkg/inventory"
	"github.com/andreatomassetti/ansible-variables/pkg/schema"
)

const omitPlaceholder = "__omit_place_holder__"

// magicVars computes the variables Ansible defines for every host.
func (l *Loader) magicVars(host *schema.Host) map[string]any {
	groupNames := lo.Filter(host.Groups, func(g string, _ int) bool { return g != inventory.AllGroup })
	sort.Strings(groupNames)

	groups := map[string]any{}
	for name, hosts := range l.inv.GroupHosts() {
		groups[name] = lo.ToAnySlice(hosts)
	}

	short, _, _ := strings.Cut(host.Name, ".")

	vars := map[string]any{
		"inventory_hostname":        host.Name,
		"inventory_hostname_short":  short,
		"group_names":               lo.ToAnySlice(groupNames),
		"groups":                    groups,
		"omit":                      omitPlaceholder,
		"ansible_inventory_sources": lo.ToAnySlice(lo.Map(l.inv.Sources(), func(s string, _ int) string { return absPath(s) })),
	}
	if host.InventoryFile != "" {
		vars["inventory_file"] = absPath(host.InventoryFile)
		vars["inventory_dir"] = filepath.Dir(absPath(host.InventoryFile))
	}
	if l.playbookDir != "" {
		vars["playbook_dir"] = absPath(l.playbookDir)
	}
	return vars
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
