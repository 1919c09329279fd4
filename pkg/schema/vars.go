package schema

import (
	"sort"

	"github.com/samber/lo"
)

// Host is an inventory entity whose variables are resolved.
type Host struct {
	Name string
	// Groups is the group membership ordered by specificity: "all" first,
	// the most specific group last.
	Groups []string
	// Vars are the host vars declared inline in the inventory.
	Vars map[string]any
	// InventoryFile is the inventory source that declared the host.
	InventoryFile string
}

// LastGroup returns the most specific group of the host, used to partition display.
func (h *Host) LastGroup() string {
	if h == nil || len(h.Groups) == 0 {
		return ""
	}
	return h.Groups[len(h.Groups)-1]
}

// String implements fmt.Stringer.
func (h *Host) String() string {
	if h == nil {
		return ""
	}
	return h.Name
}

// Layer identifies the kind of configuration layer a Source belongs to.
type Layer string

const (
	LayerInventoryGroupVars Layer = "inventory file group vars"
	LayerGroupVarsAll       Layer = "inventory group_vars/all"
	LayerPlaybookGroupAll   Layer = "playbook group_vars/all"
	LayerGroupVars          Layer = "inventory group_vars/*"
	LayerPlaybookGroupVars  Layer = "playbook group_vars/*"
	LayerInventoryHostVars  Layer = "inventory file host vars"
	LayerHostVars           Layer = "inventory host_vars/*"
	LayerPlaybookHostVars   Layer = "playbook host_vars/*"
	LayerMagicVars          Layer = "magic variables"
	LayerExtraVars          Layer = "extra vars"
)

// Source is one position in a host's precedence chain.
type Source struct {
	// Rank is the precedence rank; a higher rank wins.
	Rank  int    `json:"rank" yaml:"rank"`
	Layer Layer  `json:"layer" yaml:"layer"`
	Label string `json:"label" yaml:"label"`
	// Path is the backing file; empty for computed or in-memory layers.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// VarsFile reports whether Path is a vars file whose variables are
	// top-level keys, as opposed to an inventory file.
	VarsFile bool `json:"-" yaml:"-"`
	// Vars holds the variables the source contributes.
	Vars map[string]any `json:"-" yaml:"-"`
}

// HasPath reports whether the source is backed by a file.
func (s Source) HasPath() bool {
	return s.Path != ""
}

// String implements fmt.Stringer.
func (s Source) String() string {
	if s.Path != "" {
		return s.Path
	}
	return s.Label
}

// Registry is the ordered, read-only list of sources applicable to one host.
type Registry struct {
	host    *Host
	sources []Source
}

// NewRegistry creates a registry. Sources are sorted by rank, lowest first.
func NewRegistry(host *Host, sources []Source) *Registry {
	sorted := make([]Source, len(sources))
	copy(sorted, sources)
	sortSources(sorted)
	return &Registry{host: host, sources: sorted}
}

// Host returns the host the registry was built for.
func (r *Registry) Host() *Host {
	return r.host
}

// Sources returns a copy of all sources, lowest precedence first.
func (r *Registry) Sources() []Source {
	if r == nil {
		return nil
	}
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Files returns the vars-file sources, highest precedence first.
// A path registered more than once is kept at its highest rank only.
func (r *Registry) Files() []Source {
	if r == nil {
		return nil
	}
	files := lo.Filter(lo.Reverse(r.Sources()), func(s Source, _ int) bool {
		return s.HasPath() && s.VarsFile
	})
	return lo.UniqBy(files, func(s Source) string { return s.Path })
}

// ByPath returns the highest ranked source backed by path.
func (r *Registry) ByPath(path string) (Source, bool) {
	return lo.Find(r.Files(), func(s Source) bool { return s.Path == path })
}

// Len returns the number of sources.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.sources)
}

// Variable is a resolved variable and the source of its winning value.
type Variable struct {
	Name   string `json:"name" yaml:"name"`
	Value  any    `json:"value" yaml:"value"`
	Source Source `json:"source" yaml:"source"`
}

// Occurrence is a textual top-level definition of a variable in one file.
type Occurrence struct {
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"path" yaml:"path"`
	Label string `json:"label" yaml:"label"`
	Rank  int    `json:"rank" yaml:"rank"`
	// StartLine and EndLine are 1-based and inclusive.
	StartLine int `json:"start_line" yaml:"start_line"`
	EndLine   int `json:"end_line" yaml:"end_line"`
}

// ScanFailure records a candidate file that could not be scanned.
type ScanFailure struct {
	Path string `json:"path" yaml:"path"`
	Err  error  `json:"-" yaml:"-"`
}

// DuplicateReport describes a variable defined in more than one file.
type DuplicateReport struct {
	Name string `json:"name" yaml:"name"`
	// Authoritative is the occurrence whose value is resolved.
	Authoritative Occurrence `json:"authoritative" yaml:"authoritative"`
	// Duplicates are the remaining occurrences, highest precedence first.
	Duplicates []Occurrence `json:"duplicates" yaml:"duplicates"`
}

// RemovalTarget is one planned block removal.
type RemovalTarget struct {
	Path string `json:"path" yaml:"path"`
	Name string `json:"name" yaml:"name"`
}

// RemovalResult is the outcome of applying one RemovalTarget.
type RemovalResult struct {
	Target RemovalTarget `json:"target" yaml:"target"`
	Err    error         `json:"-" yaml:"-"`
}

// OK reports whether the removal succeeded.
func (r RemovalResult) OK() bool {
	return r.Err == nil
}

func sortSources(sources []Source) {
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Rank < sources[j].Rank
	})
}
