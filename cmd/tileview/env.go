package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/iancoleman/strcase"
)

// envName returns the environment variable that provides the default of a flag,
// e.g. TILEVIEW_PALETTE for -palette.
func envName(flagName string) string {
	return strcase.ToScreamingSnake("tileview_" + flagName)
}

// applyEnv overrides flag defaults with the values of their environment variables.
func applyEnv(f *flag.FlagSet) {
	f.VisitAll(func(fl *flag.Flag) {
		name := envName(fl.Name)
		fl.Usage = fmt.Sprintf("%s [$%s]", fl.Usage, name)
		if value, ok := os.LookupEnv(name); ok {
			if err := fl.Value.Set(value); err != nil {
				// numeric flags store the zero value on parse errors
				fl.Value.Set(fl.DefValue)
				slog.Warn("tileview: ignoring environment variable", "name", name, "error", err)
				return
			}
			fl.DefValue = value
		}
	})
}

func setVerbose(verbose bool) {
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
}
