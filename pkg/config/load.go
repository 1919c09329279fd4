package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	errUtils "github.com/andreatomassetti/ansible-variables/errors"
	log "github.com/andreatomassetti/ansible-variables/pkg/logger"
	"github.com/andreatomassetti/ansible-variables/pkg/schema"
)

// LoadConfig loads the configuration from the following locations, from
// lower to higher priority:
// system dir (`/usr/local/etc/ansible-variables` on Linux, `%LOCALAPPDATA%/ansible-variables` on Windows),
// home dir (~/.ansible-variables),
// current directory,
// the directory in ANSIBLE_VARIABLES_CLI_CONFIG_PATH,
// the file or directory given with --config,
// ENV vars,
// command-line flags.
func LoadConfig(cliConfigPath string, flags *pflag.FlagSet) (schema.Configuration, error) {
	v := viper.New()
	var cfg schema.Configuration
	v.SetConfigType("yaml")
	v.SetTypeByDefaultValue(true)
	setDefaultConfiguration(v)

	if err := bindEnv(v); err != nil {
		return cfg, err
	}
	if err := bindFlags(v, flags); err != nil {
		return cfg, err
	}

	readers := []func(*viper.Viper) error{
		readSystemConfig,
		readHomeConfig,
		readWorkDirConfig,
		readEnvConfigPath,
	}
	for _, read := range readers {
		if err := read(v); err != nil {
			return cfg, err
		}
	}
	if cliConfigPath != "" {
		found, err := mergeConfigPath(v, cliConfigPath)
		if err != nil {
			return cfg, err
		}
		if !found {
			return cfg, errUtils.Build(errUtils.ErrLoadConfig).
				WithFile(cliConfigPath).
				WithHintf("No %s.yaml found at `%s`", CliConfigFileName, cliConfigPath).
				Err()
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errUtils.Build(errUtils.ErrLoadConfig).
			WithExplanation(err.Error()).
			Err()
	}
	cfg.CliConfigPath = v.ConfigFileUsed()
	if cfg.CliConfigPath == "" {
		log.Debug("Config file not found, using defaults", "paths", "system dir, home dir, current dir, ENV vars")
	}

	if err := Validate(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setDefaultConfiguration sets the default configuration for the viper instance.
func setDefaultConfiguration(v *viper.Viper) {
	v.SetDefault("inventory", []string{DefaultInventory})
	v.SetDefault("playbook_dir", "")
	v.SetDefault("hash_behaviour", "replace")
	v.SetDefault("logs.file", "/dev/stderr")
	v.SetDefault("logs.level", "Warning")
	v.SetDefault("output.format", FormatText)
	v.SetDefault("output.color", ColorAuto)
	v.SetDefault("remove.lock", true)
	v.SetDefault("remove.lock_retries", 50)
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, alias := range envAliases {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return errUtils.Build(errUtils.ErrLoadConfig).WithExplanation(err.Error()).Err()
		}
	}
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errUtils.Build(errUtils.ErrLoadConfig).WithExplanation(err.Error()).Err()
		}
	}
	return nil
}

// readSystemConfig loads config from the system dir.
func readSystemConfig(v *viper.Viper) error {
	configFilePath := SystemDirConfigFilePath
	if runtime.GOOS == "windows" {
		configFilePath = ""
		if appDataDir := os.Getenv(WindowsAppDataEnvVar); appDataDir != "" {
			configFilePath = filepath.Join(appDataDir, CliConfigFileName)
		}
	}
	if configFilePath == "" {
		return nil
	}
	_, err := mergeConfigDir(v, configFilePath)
	return err
}

// readHomeConfig loads config from the user's HOME dir.
func readHomeConfig(v *viper.Viper) error {
	home, err := homedir.Dir()
	if err != nil {
		log.Debug("Home directory not found, skipping home config", "err", err)
		return nil
	}
	_, err = mergeConfigDir(v, filepath.Join(home, HomeDirConfigDirName))
	return err
}

// readWorkDirConfig loads config from the current working directory.
func readWorkDirConfig(v *viper.Viper) error {
	wd, err := os.Getwd()
	if err != nil {
		return errUtils.Build(errUtils.ErrLoadConfig).WithExplanation(err.Error()).Err()
	}
	_, err = mergeConfigDir(v, wd)
	return err
}

func readEnvConfigPath(v *viper.Viper) error {
	configPath := os.Getenv(CliConfigPathEnvVar)
	if configPath == "" {
		return nil
	}
	found, err := mergeConfigPath(v, configPath)
	if err != nil {
		return err
	}
	if !found {
		log.Debug("Config not found in ENV var "+CliConfigPathEnvVar, "file", configPath)
	}
	return nil
}

// mergeConfigPath merges path, which is a config file or a directory holding one.
func mergeConfigPath(v *viper.Viper, path string) (bool, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return false, errUtils.Build(errUtils.ErrLoadConfig).WithFile(path).WithExplanation(err.Error()).Err()
	}
	info, err := os.Stat(expanded)
	if err != nil {
		return false, nil
	}
	if info.IsDir() {
		return mergeConfigDir(v, expanded)
	}
	return true, mergeConfigFile(v, expanded)
}

// mergeConfigDir merges ansible-variables.yaml (or .yml) from dir, if present.
func mergeConfigDir(v *viper.Viper, dir string) (bool, error) {
	for _, ext := range configExtensions {
		path := filepath.Join(dir, CliConfigFileName+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return true, mergeConfigFile(v, path)
		}
	}
	return false, nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return errUtils.Build(errUtils.ErrLoadConfig).
			WithFile(path).
			WithExplanation(err.Error()).
			Err()
	}
	log.Debug("Merged config", "file", path)
	return nil
}

// Validate checks the values that have a fixed set of choices.
func Validate(cfg *schema.Configuration) error {
	switch cfg.Output.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return errUtils.Build(errUtils.ErrInvalidOutputFormat).
			WithContext("format", cfg.Output.Format).
			WithHintf("Use one of `%s`, `%s` or `%s`", FormatText, FormatJSON, FormatYAML).
			WithExitCode(errUtils.ExitCodeOptionsError).
			Err()
	}

	switch cfg.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errUtils.Build(errUtils.ErrInvalidColorMode).
			WithContext("color", cfg.Output.Color).
			WithHintf("Use one of `%s`, `%s` or `%s`", ColorAuto, ColorAlways, ColorNever).
			WithExitCode(errUtils.ExitCodeOptionsError).
			Err()
	}

	if _, err := log.ParseLogLevel(cfg.Logs.Level); err != nil {
		return errUtils.Build(err).
			WithSentinel(errUtils.ErrLoadConfig).
			WithExitCode(errUtils.ExitCodeOptionsError).
			Err()
	}

	cfg.Inventory = splitInventory(cfg.Inventory)
	return nil
}

// splitInventory accepts comma separated lists inside each entry, the way
// ANSIBLE_INVENTORY is written.
func splitInventory(entries []string) []string {
	var out []string
	for _, entry := range entries {
		for _, part := range strings.Split(entry, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
