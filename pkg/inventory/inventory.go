// Package inventory loads static Ansible inventories and selects hosts by
// pattern.
//
// YAML and INI inventory files are supported, as well as directories of
// inventory files. Dynamic inventory scripts and plugins are not.
package inventory

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	errUtils "github.com/andreatomassetti/ansible-variables/errors"
	log "github.com/andreatomassetti/ansible-variables/pkg/logger"
	"github.com/andreatomassetti/ansible-variables/pkg/schema"
)

const (
	// AllGroup contains every host.
	AllGroup = "all"
	// UngroupedGroup contains the hosts that belong to no other group.
	UngroupedGroup = "ungrouped"

	groupPriorityVar     = "ansible_group_priority"
	defaultGroupPriority = 1
)

// ignoredExtensions are skipped when an inventory directory is loaded.
var ignoredExtensions = []string{"~", ".orig", ".bak", ".ini", ".cfg", ".retry", ".pyc", ".pyo", ".swp"}

// Group is an inventory group.
type Group struct {
	Name string
	// Vars are the group vars declared inline in inventory files.
	Vars map[string]any
	// File is the inventory file that last declared vars for the group.
	File string

	parents  []string
	children []string
	hosts    []string
}

// Priority returns the ansible_group_priority of the group.
func (g *Group) Priority() int {
	switch p := g.Vars[groupPriorityVar].(type) {
	case int:
		return p
	case int64:
		return int(p)
	case float64:
		return int(p)
	case string:
		if n, err := strconv.Atoi(p); err == nil {
			return n
		}
	}
	return defaultGroupPriority
}

// Parents returns the names of the direct parent groups.
func (g *Group) Parents() []string {
	return append([]string(nil), g.parents...)
}

// Children returns the names of the direct child groups.
func (g *Group) Children() []string {
	return append([]string(nil), g.children...)
}

type hostEntry struct {
	name   string
	vars   map[string]any
	file   string
	groups []string
}

// Inventory is a loaded set of hosts and groups.
type Inventory struct {
	sources    []string
	dirs       []string
	hosts      map[string]*hostEntry
	hostOrder  []string
	groups     map[string]*Group
	groupOrder []string
}

func newInventory() *Inventory {
	inv := &Inventory{
		hosts:  make(map[string]*hostEntry),
		groups: make(map[string]*Group),
	}
	inv.addGroup(AllGroup)
	inv.addGroup(UngroupedGroup)
	return inv
}

// Load reads the inventory sources at paths. A path may be a file or a
// directory. Missing paths are skipped with a warning; it is an error when
// none of them exists.
func Load(paths ...string) (*Inventory, error) {
	inv := newInventory()

	for _, path := range paths {
		files, err := sourceFiles(path)
		if err != nil {
			if os.IsNotExist(err) {
				log.Warn("Inventory source not found", "file", path)
				continue
			}
			return nil, errUtils.Wrapf(errUtils.ErrInventoryParse, "%s", path).
				WithFile(path).
				WithExplanation(err.Error()).
				Err()
		}

		for _, file := range files {
			if err := inv.parseFile(file); err != nil {
				return nil, err
			}
		}
		inv.addSource(path)
	}

	if len(inv.sources) == 0 {
		return nil, errUtils.Build(errUtils.ErrInventoryNotFound).
			WithContext("sources", strings.Join(paths, ",")).
			WithHint("Pass an inventory with `-i <path>` or set `inventory` in ansible-variables.yaml").
			Err()
	}

	if err := inv.reconcile(); err != nil {
		return nil, err
	}

	log.Debug("Loaded inventory", "sources", len(inv.sources), "hosts", len(inv.hostOrder), "groups", len(inv.groupOrder))
	return inv, nil
}

// sourceFiles returns the inventory files of one source path.
func sourceFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || hasIgnoredExtension(name) {
			continue
		}
		if info, err := entry.Info(); err == nil && info.Mode()&0o111 != 0 {
			log.Warn("Skipping executable inventory file, dynamic inventories are not supported", "file", filepath.Join(path, name))
			continue
		}
		files = append(files, filepath.Join(path, name))
	}
	return files, nil
}

func hasIgnoredExtension(name string) bool {
	return lo.SomeBy(ignoredExtensions, func(ext string) bool { return strings.HasSuffix(name, ext) })
}

func (inv *Inventory) parseFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errUtils.Wrapf(errUtils.ErrInventoryParse, "%s", path).
			WithFile(path).
			WithExplanation(err.Error()).
			Err()
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml", ".json":
		err = parseYAML(inv, path, data)
	default:
		err = parseINI(inv, path, data)
	}
	if err != nil {
		return errUtils.Build(err).
			WithSentinel(errUtils.ErrInventoryParse).
			WithFile(path).
			Err()
	}

	log.Trace("Parsed inventory file", "file", path)
	return nil
}

func (inv *Inventory) addSource(path string) {
	inv.sources = append(inv.sources, path)

	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}
	if !lo.Contains(inv.dirs, dir) {
		inv.dirs = append(inv.dirs, dir)
	}
}

func (inv *Inventory) addGroup(name string) *Group {
	if g, ok := inv.groups[name]; ok {
		return g
	}
	g := &Group{Name: name, Vars: map[string]any{}}
	inv.groups[name] = g
	inv.groupOrder = append(inv.groupOrder, name)
	return g
}

func (inv *Inventory) addChild(parent, child string) error {
	if parent == child || inv.isAncestor(child, parent) {
		return errUtils.Build(errUtils.ErrInventoryParse).
			WithExplanation("group " + child + " cannot be a child of " + parent + ": the groups form a loop").
			Err()
	}

	p := inv.addGroup(parent)
	c := inv.addGroup(child)
	if !lo.Contains(p.children, child) {
		p.children = append(p.children, child)
	}
	if !lo.Contains(c.parents, parent) {
		c.parents = append(c.parents, parent)
	}
	return nil
}

// isAncestor reports whether ancestor is reachable from name through parents.
func (inv *Inventory) isAncestor(ancestor, name string) bool {
	g, ok := inv.groups[name]
	if !ok {
		return false
	}
	for _, parent := range g.parents {
		if parent == ancestor || inv.isAncestor(ancestor, parent) {
			return true
		}
	}
	return false
}

func (inv *Inventory) addHost(group, name, file string, vars map[string]any) {
	h, ok := inv.hosts[name]
	if !ok {
		h = &hostEntry{name: name, vars: map[string]any{}, file: file}
		inv.hosts[name] = h
		inv.hostOrder = append(inv.hostOrder, name)
	}
	for k, v := range vars {
		h.vars[k] = v
	}

	g := inv.addGroup(group)
	if !lo.Contains(g.hosts, name) {
		g.hosts = append(g.hosts, name)
	}
	if !lo.Contains(h.groups, group) {
		h.groups = append(h.groups, group)
	}
}

func (inv *Inventory) setGroupVars(group, file string, vars map[string]any) {
	if len(vars) == 0 {
		inv.addGroup(group)
		return
	}
	g := inv.addGroup(group)
	for k, v := range vars {
		g.Vars[k] = v
	}
	g.File = file
}

// reconcile attaches top-level groups to all and group-less hosts to ungrouped.
func (inv *Inventory) reconcile() error {
	for _, name := range inv.groupOrder {
		if name == AllGroup {
			continue
		}
		if len(inv.groups[name].parents) == 0 {
			if err := inv.addChild(AllGroup, name); err != nil {
				return err
			}
		}
	}

	for _, name := range inv.hostOrder {
		h := inv.hosts[name]
		grouped := lo.SomeBy(h.groups, func(g string) bool { return g != AllGroup && g != UngroupedGroup })
		if !grouped && !lo.Contains(h.groups, UngroupedGroup) {
			inv.addHost(UngroupedGroup, name, h.file, nil)
		}
	}
	return nil
}

// Sources returns the inventory paths that were loaded.
func (inv *Inventory) Sources() []string {
	return append([]string(nil), inv.sources...)
}

// Dirs returns the directories group_vars and host_vars are read from,
// one per loaded source.
func (inv *Inventory) Dirs() []string {
	return append([]string(nil), inv.dirs...)
}

// Group returns the group called name.
func (inv *Inventory) Group(name string) (*Group, bool) {
	g, ok := inv.groups[name]
	return g, ok
}

// GroupNames returns every group name in declaration order.
func (inv *Inventory) GroupNames() []string {
	return append([]string(nil), inv.groupOrder...)
}

// Host returns the host called name.
func (inv *Inventory) Host(name string) (*schema.Host, bool) {
	h, ok := inv.hosts[name]
	if !ok {
		return nil, false
	}
	return &schema.Host{
		Name:          h.name,
		Groups:        inv.groupsOf(h),
		Vars:          lo.Assign(h.vars),
		InventoryFile: h.file,
	}, true
}

// Groups returns the group membership of host ordered by specificity: all
// first, then by depth, ansible_group_priority and name.
func (inv *Inventory) Groups(host *schema.Host) []string {
	if host == nil {
		return nil
	}
	h, ok := inv.hosts[host.Name]
	if !ok {
		return nil
	}
	return inv.groupsOf(h)
}

func (inv *Inventory) groupsOf(h *hostEntry) []string {
	seen := map[string]struct{}{AllGroup: {}}
	var walk func(name string)
	walk = func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		for _, parent := range inv.groups[name].parents {
			walk(parent)
		}
	}
	for _, g := range h.groups {
		walk(g)
	}

	return inv.sortGroups(lo.Keys(seen))
}

func (inv *Inventory) sortGroups(names []string) []string {
	depths := make(map[string]int, len(names))
	for _, name := range names {
		depths[name] = inv.depth(name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := inv.groups[names[i]], inv.groups[names[j]]
		if depths[a.Name] != depths[b.Name] {
			return depths[a.Name] < depths[b.Name]
		}
		if a.Priority() != b.Priority() {
			return a.Priority() < b.Priority()
		}
		return a.Name < b.Name
	})
	return names
}

// depth is the length of the longest parent chain from name up to all.
func (inv *Inventory) depth(name string) int {
	g := inv.groups[name]
	d := 0
	for _, parent := range g.parents {
		if pd := inv.depth(parent) + 1; pd > d {
			d = pd
		}
	}
	return d
}

// GroupHosts returns the hosts of every group, including hosts inherited
// from child groups, in inventory order.
func (inv *Inventory) GroupHosts() map[string][]string {
	out := make(map[string][]string, len(inv.groupOrder))
	for _, name := range inv.groupOrder {
		out[name] = inv.hostsOfGroup(name)
	}
	return out
}

func (inv *Inventory) hostsOfGroup(name string) []string {
	if name == AllGroup {
		return append([]string(nil), inv.hostOrder...)
	}

	set := map[string]struct{}{}
	var walk func(group string, visited map[string]bool)
	walk = func(group string, visited map[string]bool) {
		if visited[group] {
			return
		}
		visited[group] = true
		g := inv.groups[group]
		for _, h := range g.hosts {
			set[h] = struct{}{}
		}
		for _, child := range g.children {
			walk(child, visited)
		}
	}
	walk(name, map[string]bool{})

	return inv.inOrder(set)
}

// inOrder returns the hosts of set in inventory order.
func (inv *Inventory) inOrder(set map[string]struct{}) []string {
	return lo.Filter(inv.hostOrder, func(name string, _ int) bool {
		_, ok := set[name]
		return ok
	})
}
