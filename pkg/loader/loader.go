// Package loader is the layered configuration engine. It builds the
// precedence chain of a host from its inventory, group_vars and host_vars
// directories, magic variables and extra vars, and resolves variables over it.
package loader

import (
	errUtils "github.com/andreatomassetti/ansible-variables/errors"
	"github.com/andreatomassetti/ansible-variables/pkg/inventory"
	log "github.com/andreatomassetti/ansible-variables/pkg/logger"
	"github.com/andreatomassetti/ansible-variables/pkg/schema"
)

const (
	// HashBehaviourReplace lets a higher source replace the whole value.
	HashBehaviourReplace = "replace"
	// HashBehaviourMerge deep-merges mappings across sources.
	HashBehaviourMerge = "merge"
)

// Loader resolves host variables from an inventory.
type Loader struct {
	inv           *inventory.Inventory
	playbookDir   string
	hashBehaviour string
	extraArgs     []string
	extra         []extraVars

	// Chains are built once per host for the lifetime of the Loader.
	registries  map[string]*schema.Registry
	provenances map[string]*ProvenanceStorage
}

// Option configures a Loader.
type Option func(*Loader)

// WithPlaybookDir adds the group_vars and host_vars of dir to the chain.
func WithPlaybookDir(dir string) Option {
	return func(l *Loader) {
		l.playbookDir = dir
	}
}

// WithHashBehaviour selects replace or merge semantics for mappings.
func WithHashBehaviour(behaviour string) Option {
	return func(l *Loader) {
		if behaviour != "" {
			l.hashBehaviour = behaviour
		}
	}
}

// WithExtraVars adds -e arguments, later arguments taking precedence.
func WithExtraVars(args ...string) Option {
	return func(l *Loader) {
		l.extraArgs = append(l.extraArgs, args...)
	}
}

// New creates a Loader over inv. Extra vars are read here, once.
func New(inv *inventory.Inventory, opts ...Option) (*Loader, error) {
	l := &Loader{
		inv:           inv,
		hashBehaviour: HashBehaviourReplace,
		registries:    make(map[string]*schema.Registry),
		provenances:   make(map[string]*ProvenanceStorage),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.hashBehaviour != HashBehaviourReplace && l.hashBehaviour != HashBehaviourMerge {
		return nil, errUtils.Build(errUtils.ErrInvalidHashBehaviour).
			WithContext("hash_behaviour", l.hashBehaviour).
			WithHintf("Set hash_behaviour to `%s` or `%s`", HashBehaviourReplace, HashBehaviourMerge).
			WithExitCode(errUtils.ExitCodeOptionsError).
			Err()
	}

	extra, err := parseExtraVars(l.extraArgs)
	if err != nil {
		return nil, err
	}
	l.extra = extra

	if l.playbookDir != "" && l.sameAsInventoryDir(l.playbookDir) {
		log.Debug("Playbook directory is an inventory directory, its vars are loaded once", "file", l.playbookDir)
		l.playbookDir = ""
	}
	return l, nil
}

func (l *Loader) sameAsInventoryDir(dir string) bool {
	target := absPath(dir)
	for _, d := range l.inv.Dirs() {
		if absPath(d) == target {
			return true
		}
	}
	return false
}

// chain accumulates sources in increasing precedence.
type chain struct {
	sources []schema.Source
}

func (c *chain) add(layer schema.Layer, label, path string, varsFile bool, vars map[string]any) {
	c.sources = append(c.sources, schema.Source{
		Rank:     len(c.sources) + 1,
		Layer:    layer,
		Label:    label,
		Path:     path,
		VarsFile: varsFile,
		Vars:     vars,
	})
}

func (c *chain) addFiles(layer schema.Layer, base, kind, name string) error {
	files, err := findVarsFiles(base, kind, name)
	if err != nil {
		return err
	}
	for _, f := range files {
		vars, err := readVarsFile(f.path)
		if err != nil {
			return err
		}
		c.add(layer, f.label, f.path, true, vars)
	}
	return nil
}

// LoadSources returns the precedence chain of host, lowest first:
// inventory file group vars, group_vars/all (inventory, then playbook),
// group_vars/<group> (inventory, then playbook), inventory file host vars,
// host_vars/<host> (inventory, then playbook), magic vars and extra vars.
func (l *Loader) LoadSources(host *schema.Host) (*schema.Registry, error) {
	if host == nil {
		return nil, errUtils.ErrMissingHost
	}
	if registry, ok := l.registries[host.Name]; ok {
		return registry, nil
	}

	groups := host.Groups
	if len(groups) == 0 {
		groups = l.inv.Groups(host)
	}
	specific := make([]string, 0, len(groups))
	for _, g := range groups {
		if g != inventory.AllGroup {
			specific = append(specific, g)
		}
	}

	c := &chain{}

	for _, name := range append([]string{inventory.AllGroup}, specific...) {
		if g, ok := l.inv.Group(name); ok && len(g.Vars) > 0 {
			c.add(schema.LayerInventoryGroupVars, "inventory group "+name, g.File, false, g.Vars)
		}
	}

	for _, dir := range l.inv.Dirs() {
		if err := c.addFiles(schema.LayerGroupVarsAll, dir, groupVarsDir, inventory.AllGroup); err != nil {
			return nil, err
		}
	}
	if l.playbookDir != "" {
		if err := c.addFiles(schema.LayerPlaybookGroupAll, l.playbookDir, groupVarsDir, inventory.AllGroup); err != nil {
			return nil, err
		}
	}

	for _, name := range specific {
		for _, dir := range l.inv.Dirs() {
			if err := c.addFiles(schema.LayerGroupVars, dir, groupVarsDir, name); err != nil {
				return nil, err
			}
		}
		if l.playbookDir != "" {
			if err := c.addFiles(schema.LayerPlaybookGroupVars, l.playbookDir, groupVarsDir, name); err != nil {
				return nil, err
			}
		}
	}

	if len(host.Vars) > 0 {
		c.add(schema.LayerInventoryHostVars, "inventory host "+host.Name, host.InventoryFile, false, host.Vars)
	}

	for _, dir := range l.inv.Dirs() {
		if err := c.addFiles(schema.LayerHostVars, dir, hostVarsDir, host.Name); err != nil {
			return nil, err
		}
	}
	if l.playbookDir != "" {
		if err := c.addFiles(schema.LayerPlaybookHostVars, l.playbookDir, hostVarsDir, host.Name); err != nil {
			return nil, err
		}
	}

	c.add(schema.LayerMagicVars, string(schema.LayerMagicVars), "", false, l.magicVars(host))

	for _, ev := range l.extra {
		c.add(schema.LayerExtraVars, ev.label, ev.path, ev.path != "", ev.vars)
	}

	registry := schema.NewRegistry(host, c.sources)
	l.registries[host.Name] = registry

	log.Debug("Loaded sources", "host", host.Name, "sources", registry.Len(), "files", len(registry.Files()))
	return registry, nil
}

// ResolveRaw resolves every variable of host, or only filter when it is not
// empty. Internal variables are included.
func (l *Loader) ResolveRaw(host *schema.Host, filter string) ([]schema.Variable, error) {
	registry, err := l.LoadSources(host)
	if err != nil {
		return nil, err
	}

	deep := l.hashBehaviour == HashBehaviourMerge
	provenance := NewProvenanceStorage()
	values := map[string]any{}

	for _, source := range registry.Sources() {
		for name, value := range source.Vars {
			if filter != "" && name != filter {
				continue
			}
			merged, err := combine(values[name], value, deep)
			if err != nil {
				return nil, errUtils.Wrapf(errUtils.ErrSourceLoad, "merge %s from %s", name, source).
					WithVariable(name).
					WithExplanation(err.Error()).
					Err()
			}
			values[name] = merged
			provenance.Record(name, ProvenanceEntry{Source: source, Value: value})
		}
	}
	l.provenances[host.Name] = provenance

	vars := make([]schema.Variable, 0, len(values))
	for _, name := range provenance.GetNames() {
		winner, _ := provenance.GetLatest(name)
		vars = append(vars, schema.Variable{Name: name, Value: values[name], Source: winner.Source})
	}
	return vars, nil
}

// Provenance returns the definition chains recorded by the last ResolveRaw
// call for host.
func (l *Loader) Provenance(host *schema.Host) *ProvenanceStorage {
	if host == nil {
		return nil
	}
	return l.provenances[host.Name]
}

// Contributors returns the sources whose definitions make up the value of
// name resolved by the last ResolveRaw call for host, lowest precedence
// first. Under replace only the winner contributes. Under merge the winning
// mapping also carries every mapping defined right below it.
func (l *Loader) Contributors(host *schema.Host, name string) []schema.Source {
	chain := l.Provenance(host).Get(name)
	if len(chain) == 0 {
		return nil
	}

	start := len(chain) - 1
	if l.hashBehaviour == HashBehaviourMerge {
		for start > 0 && isMapping(chain[start].Value) && isMapping(chain[start-1].Value) {
			start--
		}
	}

	sources := make([]schema.Source, 0, len(chain)-start)
	for _, entry := range chain[start:] {
		sources = append(sources, entry.Source)
	}
	return sources
}
