package schema

// HostReport is the output of one processed host.
type HostReport struct {
	Host string `json:"host" yaml:"host"`
	// Group is the most specific group of the host.
	Group     string           `json:"group" yaml:"group"`
	Variables []VariableReport `json:"variables" yaml:"variables"`
}

// VariableReport is the per-variable output model.
type VariableReport struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
	// Source is the label of the source the value was resolved from.
	Source string `json:"source" yaml:"source"`
	// Occurrences lists the files that define the variable, highest precedence first.
	Occurrences []string `json:"occurrences,omitempty" yaml:"occurrences,omitempty"`
	// Duplicates is set when the variable is defined in more than one file.
	Duplicates *DuplicateReport `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Removals   []RemovalResult  `json:"-" yaml:"-"`
}

// Removed reports whether the duplicate at path was deleted.
func (v VariableReport) Removed(path string) bool {
	for _, r := range v.Removals {
		if r.Target.Path == path && r.OK() {
			return true
		}
	}
	return false
}
