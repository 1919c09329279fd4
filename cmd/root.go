package cmd

import (
	"io"

	"github.com/spf13/cobra"

	errUtils "github.com/andreatomassetti/ansible-variables/errors"
	e "github.com/andreatomassetti/ansible-variables/internal/exec"
	cfg "github.com/andreatomassetti/ansible-variables/pkg/config"
	log "github.com/andreatomassetti/ansible-variables/pkg/logger"
	"github.com/andreatomassetti/ansible-variables/pkg/schema"
	"github.com/andreatomassetti/ansible-variables/pkg/ui"
	"github.com/andreatomassetti/ansible-variables/pkg/version"
)

const (
	flagConfig           = "config"
	flagInventory        = "inventory"
	flagPlaybookDir      = "playbook-dir"
	flagHashBehaviour    = "hash-behaviour"
	flagExtraVars        = "extra-vars"
	flagVar              = "var"
	flagCheckDuplicates  = "check-duplicates"
	flagRemoveDuplicates = "remove-duplicates"
	flagVerbose          = "verbose"
	flagFormat           = "format"
	flagColor            = "color"
	flagLogsLevel        = "logs-level"
	flagLogsFile         = "logs-file"

	// verboseErrors is the verbosity from which errors carry their context and stack.
	verboseErrors = 2
)

var (
	cliConfig  schema.Configuration
	logCloser  io.Closer
	errVerbose bool
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = NewRootCmd()

// NewRootCmd builds the command tree with fresh flag state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ansible-variables [flags] <host-pattern>",
		Short: "Show the variables of Ansible hosts and where their values come from",
		Long: `ansible-variables resolves the variables of the hosts matching a pattern the way Ansible does, ` +
			`and prints every value together with the source it was taken from. ` +
			`It can also list the files that define a variable and remove the definitions that are shadowed by a higher precedence file.`,
		Example: "ansible-variables web01\n" +
			"ansible-variables -i inventories/prod --var ntp_servers -v webservers\n" +
			"ansible-variables --remove-duplicates all",
		Args:              cobra.MaximumNArgs(1),
		SilenceErrors:     true,
		Version:           version.Version,
		PersistentPreRunE: initConfig,
		RunE:              runVariables,
	}
	root.SetVersionTemplate(version.Info() + "\n")

	pf := root.PersistentFlags()
	pf.String(flagConfig, "", "Path to an ansible-variables.yaml file or to the directory holding it")
	pf.String(flagLogsLevel, "Warning", "Logs level. Supported log levels are Trace, Debug, Info, Warning, Off")
	pf.String(flagLogsFile, "/dev/stderr", "The file to write logs to, including '/dev/stdout' and '/dev/stderr'")
	pf.String(flagColor, cfg.ColorAuto, "Color output: auto, always or never")

	f := root.Flags()
	f.StringArrayP(flagInventory, "i", nil, "Inventory file or directory, comma separated or repeated")
	f.String(flagPlaybookDir, "", "Playbook directory whose group_vars and host_vars are loaded as well")
	f.String(flagHashBehaviour, "replace", "How dictionaries from different sources are combined: replace or merge")
	f.StringArrayP(flagExtraVars, "e", nil, "Set additional variables as key=value, YAML/JSON or @file (repeatable)")
	f.String(flagVar, "", "Only show this variable")
	f.Bool(flagCheckDuplicates, false, "Report variables defined in more than one vars file")
	f.Bool(flagRemoveDuplicates, false, "Remove the definitions shadowed by a higher precedence file (implies --check-duplicates)")
	f.CountP(flagVerbose, "v", "Verbose mode, -v lists every file defining a variable")
	f.String(flagFormat, cfg.FormatText, "Output format: text, json or yaml")

	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command. It is called by main.main().
func Execute() error {
	return RootCmd.Execute()
}

// Cleanup releases the resources opened while the command ran.
func Cleanup() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

// ErrorFormatterConfig returns the error formatting settings of the current run.
func ErrorFormatterConfig() errUtils.FormatterConfig {
	config := errUtils.DefaultFormatterConfig()
	config.Verbose = errVerbose
	if cliConfig.Output.Color != "" {
		config.Color = cliConfig.Output.Color
	}
	return config
}

// initConfig loads the configuration and sets up logging before any command runs.
func initConfig(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	configPath, _ := cmd.Flags().GetString(flagConfig)
	config, err := cfg.LoadConfig(configPath, cmd.Flags())
	if err != nil {
		return err
	}
	cliConfig = config

	closer, err := log.Configure(config.Logs.Level, config.Logs.File)
	if err != nil {
		return err
	}
	Cleanup()
	logCloser = closer

	if verbosity, err := cmd.Flags().GetCount(flagVerbose); err == nil {
		errVerbose = verbosity >= verboseErrors
	}

	log.Debug("Configuration loaded", "file", config.CliConfigPath, "inventory", config.Inventory)
	return nil
}

func runVariables(cmd *cobra.Command, args []string) error {
	opts, err := parseRunOptions(cmd, args)
	if err != nil {
		return err
	}

	printer, err := ui.NewPrinter(cmd.OutOrStdout(), cliConfig.Output.Format, cliConfig.Output.Color,
		ui.WithVerbosity(opts.Verbosity),
		ui.WithDuplicateCheck(opts.CheckDuplicates || opts.RemoveDuplicates),
	)
	if err != nil {
		return err
	}

	return e.ExecuteVariables(&cliConfig, opts, printer)
}

func parseRunOptions(cmd *cobra.Command, args []string) (schema.RunOptions, error) {
	var opts schema.RunOptions
	if len(args) > 0 {
		opts.Pattern = args[0]
	}

	flags := cmd.Flags()
	var err error
	if opts.Variable, err = flags.GetString(flagVar); err != nil {
		return opts, err
	}
	if opts.ExtraVars, err = flags.GetStringArray(flagExtraVars); err != nil {
		return opts, err
	}
	if opts.Verbosity, err = flags.GetCount(flagVerbose); err != nil {
		return opts, err
	}
	if opts.CheckDuplicates, err = flags.GetBool(flagCheckDuplicates); err != nil {
		return opts, err
	}
	if opts.RemoveDuplicates, err = flags.GetBool(flagRemoveDuplicates); err != nil {
		return opts, err
	}
	return opts, nil
}
