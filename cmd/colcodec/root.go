package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/arloliu/colcodec"
	"github.com/arloliu/colcodec/format"
	"github.com/arloliu/colcodec/internal/logger"
)

const envPrefix = "COLCODEC"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "colcodec",
		Short: "Column codec and block compressor toolbox",
		Long: `colcodec runs the colcodec block compressors on files: it compresses and
decompresses them, cross-checks the built-in LZ4, Snappy, DEFLATE and gzip
implementations against reference libraries and measures codec throughput.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			return initLogging(v)
		},
	}

	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "console", "log encoding (console or json)")

	root.AddCommand(
		newInfoCmd(),
		newCompressCmd(),
		newDecompressCmd(),
		newVerifyCmd(),
		newBenchCmd(),
	)

	return root
}

// loadConfig layers flags over COLCODEC_* environment variables.
func loadConfig(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	return v, nil
}

func initLogging(v *viper.Viper) error {
	l, err := logger.New(logger.Config{
		Level:    v.GetString("log-level"),
		Encoding: v.GetString("log-format"),
	})
	if err != nil {
		return err
	}
	colcodec.SetLogger(l)

	return nil
}

func parseCodec(name string) (format.CompressionType, error) {
	ct, ok := format.ParseCompression(name)
	if !ok {
		names := make([]string, 0, len(format.CompressionTypes()))
		for _, t := range format.CompressionTypes() {
			names = append(names, strings.ToLower(t.String()))
		}

		return 0, fmt.Errorf("unknown codec %q (available: %s)", name, strings.Join(names, ", "))
	}

	return ct, nil
}
