package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/pgzip"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/colcodec"
	"github.com/arloliu/colcodec/format"
	"github.com/arloliu/colcodec/internal/logger"
)

func newCompressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compress <input> <output>",
		Short: "Compress a file as one block",
		Long: `Compress reads the whole input and writes it as a single compressed block.

With --codec gzip and --parallel the file is written as one gzip member whose
DEFLATE blocks are produced concurrently, which suits files far larger than a page.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			ct, err := parseCodec(v.GetString("codec"))
			if err != nil {
				return err
			}

			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var out []byte
			if ct == format.CompressionGzip && v.GetBool("parallel") {
				out, err = parallelGzip(src, v.GetInt("level"))
			} else {
				out, err = colcodec.Compress(ct, src, v.GetInt("level"))
			}
			if err != nil {
				return fmt.Errorf("compress %s: %w", args[0], err)
			}
			if err := os.WriteFile(args[1], out, 0o644); err != nil {
				return err
			}

			logger.Named("cli").Info("compressed",
				zap.String("codec", ct.String()), zap.Int("in", len(src)), zap.Int("out", len(out)))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s (%s)\n",
				ct, humanize.Bytes(uint64(len(src))), humanize.Bytes(uint64(len(out))), ratio(len(out), len(src)))

			return nil
		},
	}

	cmd.Flags().String("codec", "zstd", "compression codec")
	cmd.Flags().Int("level", colcodec.DefaultLevel, "compression level, -1 for the codec default")
	cmd.Flags().Bool("parallel", false, "with gzip, compress blocks concurrently")

	return cmd
}

func newDecompressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decompress <input> <output>",
		Short: "Decompress a file holding one block",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			ct, err := parseCodec(v.GetString("codec"))
			if err != nil {
				return err
			}

			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out, err := colcodec.Decompress(ct, src, v.GetInt("size"))
			if err != nil {
				return fmt.Errorf("decompress %s: %w", args[0], err)
			}
			if err := os.WriteFile(args[1], out, 0o644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n",
				ct, humanize.Bytes(uint64(len(src))), humanize.Bytes(uint64(len(out))))

			return nil
		},
	}

	cmd.Flags().String("codec", "zstd", "compression codec")
	cmd.Flags().Int("size", 0, "exact decompressed size, 0 when unknown")

	return cmd
}

func parallelGzip(src []byte, level int) ([]byte, error) {
	if level < 0 {
		level = pgzip.DefaultCompression
	}

	var buf bytes.Buffer
	w, err := pgzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func ratio(compressed, original int) string {
	if original == 0 {
		return "n/a"
	}

	return fmt.Sprintf("%.2f%%", float64(compressed)*100/float64(original))
}
