// Package app is the command scaffold shared by the binaries. It wires a
// NamedFlagSetOptions value into a cobra command, loads an optional config
// file and environment through viper, and hands off to a RunFunc.
package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	cliflag "k8s.io/component-base/cli/flag"
	"k8s.io/component-base/term"

	"github.com/half-shot/matrix-poweredup/pkg/log"
)

const configFlagName = "config"

// RunFunc is the body of the command, called after options are loaded,
// completed and validated.
type RunFunc func() error

// App is a command line application.
type App struct {
	name        string
	shortDesc   string
	description string
	options     NamedFlagSetOptions
	runFunc     RunFunc
	noConfig    bool
	args        cobra.PositionalArgs
	subcommands []*cobra.Command

	viper *viper.Viper
	cmd   *cobra.Command
}

// Option configures an App.
type Option func(*App)

// WithOptions sets the options the command loads and validates.
func WithOptions(opts NamedFlagSetOptions) Option {
	return func(a *App) { a.options = opts }
}

// WithRunFunc sets the command body.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) { a.runFunc = run }
}

// WithDescription sets the long description.
func WithDescription(desc string) Option {
	return func(a *App) { a.description = desc }
}

// WithNoConfig drops the --config flag and environment lookup.
func WithNoConfig() Option {
	return func(a *App) { a.noConfig = true }
}

// WithValidArgs sets the positional argument validator.
func WithValidArgs(args cobra.PositionalArgs) Option {
	return func(a *App) { a.args = args }
}

// WithDefaultValidArgs rejects any positional argument.
func WithDefaultValidArgs() Option {
	return WithValidArgs(func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			if len(arg) > 0 {
				return fmt.Errorf("%q does not take any arguments, got %q", cmd.CommandPath(), args)
			}
		}
		return nil
	})
}

// WithSubCommands attaches child commands.
func WithSubCommands(cmds ...*cobra.Command) Option {
	return func(a *App) { a.subcommands = append(a.subcommands, cmds...) }
}

// NewApp builds an App named name.
func NewApp(name, shortDesc string, opts ...Option) *App {
	a := &App{
		name:      name,
		shortDesc: shortDesc,
		viper:     viper.New(),
	}
	for _, o := range opts {
		o(a)
	}
	a.buildCommand()
	return a
}

// Command returns the underlying cobra command, e.g. to nest it under another App.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

// Run executes the command and exits non-zero on failure.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:           a.name,
		Short:         a.shortDesc,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          a.args,
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	cmd.Flags().SortFlags = true

	var fss cliflag.NamedFlagSets
	if a.options != nil {
		fss = a.options.Flags()
	}

	global := fss.FlagSet("global")
	global.BoolP("help", "h", false, fmt.Sprintf("help for %s", a.name))
	if !a.noConfig {
		global.String(configFlagName, "", "Read configuration from this file (YAML, JSON or TOML).")
	}

	for _, f := range fss.FlagSets {
		cmd.Flags().AddFlagSet(f)
	}

	cols, _, _ := term.TerminalSize(cmd.OutOrStdout())
	cliflag.SetUsageAndHelpFunc(cmd, fss, cols)

	if a.runFunc != nil {
		cmd.RunE = a.runCommand
	}
	cmd.AddCommand(a.subcommands...)

	a.cmd = cmd
}

func (a *App) runCommand(cmd *cobra.Command, _ []string) error {
	if a.options != nil {
		if err := a.loadConfig(cmd.Flags()); err != nil {
			return err
		}
		if err := a.options.Complete(); err != nil {
			return err
		}
		if err := a.options.Validate(); err != nil {
			return err
		}
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			log.Debug("Flag", "name", f.Name, "value", f.Value.String())
		}
	})

	return a.runFunc()
}

// loadConfig merges flags, environment and the config file into the options.
// Flags set explicitly win over the file; the file wins over flag defaults.
func (a *App) loadConfig(fs *pflag.FlagSet) error {
	if a.noConfig {
		return nil
	}

	v := a.viper
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	prefix := strings.ToUpper(strings.NewReplacer("-", "_").Replace(a.name))
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path := v.GetString(configFlagName); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read configuration file %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(a.options); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	return nil
}
