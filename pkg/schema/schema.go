package schema

// Configuration is the tool configuration loaded from ansible-variables.yaml,
// the environment and the command line.
type Configuration struct {
	Inventory     []string `yaml:"inventory" json:"inventory" mapstructure:"inventory"`
	PlaybookDir   string   `yaml:"playbook_dir" json:"playbook_dir" mapstructure:"playbook_dir"`
	HashBehaviour string   `yaml:"hash_behaviour" json:"hash_behaviour" mapstructure:"hash_behaviour"`
	Logs          Logs     `yaml:"logs" json:"logs" mapstructure:"logs"`
	Output        Output   `yaml:"output" json:"output" mapstructure:"output"`
	Remove        Remove   `yaml:"remove" json:"remove" mapstructure:"remove"`

	// CliConfigPath is the config file that was used, if any.
	CliConfigPath string `yaml:"-" json:"-" mapstructure:"-"`
}

type Logs struct {
	File  string `yaml:"file" json:"file" mapstructure:"file"`
	Level string `yaml:"level" json:"level" mapstructure:"level"`
}

type Output struct {
	// Format is one of text, json or yaml.
	Format string `yaml:"format" json:"format" mapstructure:"format"`
	// Color is one of auto, always or never.
	Color string `yaml:"color" json:"color" mapstructure:"color"`
}

type Remove struct {
	// Lock takes an advisory lock on <file>.lock while a file is rewritten.
	Lock        bool `yaml:"lock" json:"lock" mapstructure:"lock"`
	LockRetries int  `yaml:"lock_retries" json:"lock_retries" mapstructure:"lock_retries"`
}

// RunOptions are the per-invocation options of the variables command.
type RunOptions struct {
	Pattern          string
	Variable         string
	ExtraVars        []string
	Verbosity        int
	CheckDuplicates  bool
	RemoveDuplicates bool
}
