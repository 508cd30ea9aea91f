package main

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"asvm/pkg/config"
	"asvm/pkg/vm"
)

type rootCommand struct {
	logger *logrus.Logger
	cmd    *cobra.Command

	configPath string
	swfVersion int
	logLevel   string

	vm *vm.VM
}

func newRootCommand(logger *logrus.Logger) *rootCommand {
	c := &rootCommand{logger: logger}
	c.cmd = &cobra.Command{
		Use:   "asvalue",
		Short: "Inspect ActionScript value coercion and equality",
		Long: `Inspect ActionScript value coercion and equality.

Literals: undefined, null, true, false, n:<number>, s:<text>, j:<json>.
Anything else is taken as a string.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}

	flags := c.cmd.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "YAML configuration file")
	flags.IntVar(&c.swfVersion, "swf-version", config.Default().SWFVersion, "SWF version to emulate")
	flags.StringVar(&c.logLevel, "log-level", config.Default().LogLevel, "log level (debug, info, warn, error)")

	c.cmd.AddCommand(
		c.coerceCmd("string", "Convert a literal to a string", func(v vm.Value) string {
			return v.ToString(c.vm)
		}),
		c.numberCmd(),
		c.coerceCmd("bool", "Convert a literal to a boolean", func(v vm.Value) string {
			return strconv.FormatBool(v.ToBoolean(c.vm))
		}),
		c.coerceCmd("typeof", "Print the typeof result of a literal", func(v vm.Value) string {
			return v.TypeOf()
		}),
		c.equalsCmd(),
		c.amfCmd(),
		c.dumpCmd(),
	)
	return c
}

// persistentPreRunE builds the VM from the config file, the environment
// and the flags, in increasing order of precedence.
func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("swf-version") {
		cfg.SWFVersion = c.swfVersion
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	c.logger.SetLevel(level)

	c.vm = vm.NewVM(cfg)
	c.vm.SetLogger(c.logger)
	c.logger.WithField("swf_version", cfg.SWFVersion).Debug("VM ready")
	return nil
}
