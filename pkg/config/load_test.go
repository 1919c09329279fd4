package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/andreatomassetti/ansible-variables/errors"
)

// isolate points the home directory and the working directory at empty
// temporary directories and clears the environment the loader reads.
func isolate(t *testing.T) (home, wd string) {
	t.Helper()

	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	home = t.TempDir()
	wd = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Chdir(wd)

	for _, env := range []string{
		CliConfigPathEnvVar,
		"ANSIBLE_INVENTORY",
		"ANSIBLE_PLAYBOOK_DIR",
		"ANSIBLE_HASH_BEHAVIOUR",
		"ANSIBLE_VARIABLES_INVENTORY",
		"ANSIBLE_VARIABLES_OUTPUT_FORMAT",
		"ANSIBLE_VARIABLES_LOGS_LEVEL",
	} {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
	return home, wd
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringArrayP("inventory", "i", nil, "")
	flags.String("playbook-dir", "", "")
	flags.String("format", "", "")
	flags.String("color", "", "")
	flags.String("logs-level", "", "")
	flags.String("logs-file", "", "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	if _, statErr := os.Stat(SystemDirConfigFilePath); os.IsNotExist(statErr) {
		assert.Empty(t, cfg.CliConfigPath)
	}
	assert.Equal(t, []string{DefaultInventory}, cfg.Inventory)
	assert.Equal(t, "replace", cfg.HashBehaviour)
	assert.Equal(t, FormatText, cfg.Output.Format)
	assert.Equal(t, ColorAuto, cfg.Output.Color)
	assert.Equal(t, "Warning", cfg.Logs.Level)
	assert.Equal(t, "/dev/stderr", cfg.Logs.File)
	assert.True(t, cfg.Remove.Lock)
	assert.Equal(t, 50, cfg.Remove.LockRetries)
}

func TestLoadConfig_WorkDirOverridesHome(t *testing.T) {
	home, wd := isolate(t)
	writeConfig(t, filepath.Join(home, HomeDirConfigDirName), "ansible-variables.yaml", `
inventory:
  - home-inventory
playbook_dir: /srv/playbooks
output:
  color: never
`)
	used := writeConfig(t, wd, "ansible-variables.yml", `
inventory:
  - ./hosts
  - ./more
output:
  format: json
remove:
  lock: false
`)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"./hosts", "./more"}, cfg.Inventory)
	assert.Equal(t, "/srv/playbooks", cfg.PlaybookDir)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, ColorNever, cfg.Output.Color)
	assert.False(t, cfg.Remove.Lock)
	assert.Equal(t, used, cfg.CliConfigPath)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	_, wd := isolate(t)
	writeConfig(t, wd, "ansible-variables.yaml", "inventory: [file-inventory]\nhash_behaviour: replace\n")

	t.Setenv("ANSIBLE_INVENTORY", "a.ini, b.yml")
	t.Setenv("ANSIBLE_HASH_BEHAVIOUR", "merge")
	t.Setenv("ANSIBLE_VARIABLES_OUTPUT_FORMAT", "yaml")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.ini", "b.yml"}, cfg.Inventory)
	assert.Equal(t, "merge", cfg.HashBehaviour)
	assert.Equal(t, FormatYAML, cfg.Output.Format)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ANSIBLE_VARIABLES_OUTPUT_FORMAT", "yaml")
	t.Setenv("ANSIBLE_INVENTORY", "env-inventory")

	cfg, err := LoadConfig("", newFlags(t, "--format", "json", "-i", "one", "-i", "two"))
	require.NoError(t, err)

	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, []string{"one", "two"}, cfg.Inventory)
}

func TestLoadConfig_UnchangedFlagsKeepDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("", newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, []string{DefaultInventory}, cfg.Inventory)
	assert.Equal(t, FormatText, cfg.Output.Format)
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	file := writeConfig(t, dir, "custom.yaml", "logs:\n  level: Debug\n")

	cfg, err := LoadConfig(file, nil)
	require.NoError(t, err)
	assert.Equal(t, "Debug", cfg.Logs.Level)
	assert.Equal(t, file, cfg.CliConfigPath)

	_, err = LoadConfig(filepath.Join(dir, "missing"), nil)
	assert.ErrorIs(t, err, errUtils.ErrLoadConfig)
}

func TestLoadConfig_EnvConfigPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeConfig(t, dir, "ansible-variables.yaml", "playbook_dir: from-env-path\n")
	t.Setenv(CliConfigPathEnvVar, dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env-path", cfg.PlaybookDir)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "format", content: "output:\n  format: xml\n", wantErr: errUtils.ErrInvalidOutputFormat},
		{name: "color", content: "output:\n  color: rainbow\n", wantErr: errUtils.ErrInvalidColorMode},
		{name: "log level", content: "logs:\n  level: Loud\n", wantErr: errUtils.ErrLoadConfig},
		{name: "yaml", content: "output: [unclosed\n", wantErr: errUtils.ErrLoadConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, wd := isolate(t)
			writeConfig(t, wd, "ansible-variables.yaml", tt.content)

			_, err := LoadConfig("", nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSplitInventory(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitInventory([]string{"a, b", "", "c"}))
	assert.Nil(t, splitInventory(nil))
}
