// Command asvalue shows how ActionScript coerces and compares values under
// a given SWF version.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	logger := &logrus.Logger{
		Out:       os.Stderr,
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}
	c := newRootCommand(logger)
	if err := c.cmd.Execute(); err != nil {
		logger.WithError(err).Error("asvalue failed")
		os.Exit(1)
	}
}
