// Command sourcerer generates TypeScript source from a database schema.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DanielFGray/pg-sourcerer-sub001/config"
	_ "github.com/DanielFGray/pg-sourcerer-sub001/plugins/httpd"
	_ "github.com/DanielFGray/pg-sourcerer-sub001/plugins/queries"
	_ "github.com/DanielFGray/pg-sourcerer-sub001/plugins/tstypes"
	_ "github.com/DanielFGray/pg-sourcerer-sub001/plugins/zod"
)

// version is stamped by the release build.
var version = "devel"

var (
	flagConfig  string
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "sourcerer",
		Short:         "schema-driven TypeScript code generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to sourcerer.yaml")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(
		generateCmd(),
		introspectCmd(),
		watchCmd(),
		versionCmd(),
	)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the sourcerer version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "sourcerer", version)
		},
	}
}

// newLogger builds the CLI logger: console encoding, debug level behind
// --verbose.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if flagVerbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.DefaultPath
}
