package config

const (
	CliConfigFileName = "ansible-variables"

	SystemDirConfigFilePath = "/usr/local/etc/ansible-variables"
	HomeDirConfigDirName    = ".ansible-variables"
	WindowsAppDataEnvVar    = "LOCALAPPDATA"

	// CliConfigPathEnvVar points to a directory holding ansible-variables.yaml.
	CliConfigPathEnvVar = "ANSIBLE_VARIABLES_CLI_CONFIG_PATH"
	EnvPrefix           = "ANSIBLE_VARIABLES"

	DefaultInventory = "/etc/ansible/hosts"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// configExtensions are tried in order for each config directory.
var configExtensions = []string{".yaml", ".yml"}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"inventory":      "inventory",
	"playbook-dir":   "playbook_dir",
	"hash-behaviour": "hash_behaviour",
	"logs-level":     "logs.level",
	"logs-file":      "logs.file",
	"format":         "output.format",
	"color":          "output.color",
}

// envAliases are the Ansible environment variables honoured as well as
// the ANSIBLE_VARIABLES_ prefixed ones.
var envAliases = map[string]string{
	"inventory":      "ANSIBLE_INVENTORY",
	"playbook_dir":   "ANSIBLE_PLAYBOOK_DIR",
	"hash_behaviour": "ANSIBLE_HASH_BEHAVIOUR",
}
