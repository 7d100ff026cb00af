package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/fcnet/internal/checkpoint"
	"github.com/born-ml/fcnet/internal/envconfig"
	"github.com/born-ml/fcnet/internal/logutil"
	"github.com/born-ml/fcnet/internal/serialization"
)

const version = "v0.1.0"

// NewCLI returns the root fcnet command.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "fcnet",
		Short:         "Fully-connected network checkpoint tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(logutil.NewLogger(cmd.ErrOrStderr(), envconfig.LogLevel()))
			slog.Debug("fcnet config", "env", envconfig.Values())
		},
	}

	rootCmd.PersistentFlags().String("validation", "", "Header validation level: strict, normal or none (default from FCNET_VALIDATION)")
	rootCmd.PersistentFlags().Bool("skip-checksum", false, "Skip checksum verification when reading checkpoints")

	envVars := envconfig.AsMap()
	envs := []envconfig.EnvVar{envVars["FCNET_DEBUG"], envVars["FCNET_VALIDATION"], envVars["FCNET_SKIP_CHECKSUM"]}

	for _, cmd := range []*cobra.Command{
		newInitCmd(),
		newInspectCmd(),
		newVerifyCmd(),
		newCheckCmd(),
	} {
		appendEnvDocs(cmd, envs)
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString("\nEnvironment Variables:\n")
	for _, e := range envs {
		fmt.Fprintf(&sb, "      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + sb.String())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fcnet version %s (format v%d)\n", version, serialization.FormatVersion)
		},
	}
}

// readOptions combines the persistent flags with the environment. Flags win.
func readOptions(cmd *cobra.Command) ([]checkpoint.Option, error) {
	level := envconfig.ValidationLevel()
	if s, _ := cmd.Flags().GetString("validation"); s != "" {
		l, err := serialization.ParseValidationLevel(s)
		if err != nil {
			return nil, err
		}
		level = l
	}

	opts := []checkpoint.Option{checkpoint.WithValidationLevel(level)}
	if skip, _ := cmd.Flags().GetBool("skip-checksum"); skip || envconfig.SkipChecksum() {
		opts = append(opts, checkpoint.SkipChecksum())
	}
	return opts, nil
}
