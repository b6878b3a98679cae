package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/arloliu/colcodec/compress"
	"github.com/arloliu/colcodec/format"
	"github.com/arloliu/colcodec/metrics"
)

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench <input>",
		Short: "Measure compression and decompression throughput per codec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			codecs, err := benchCodecs(v.GetStringSlice("codecs"), v.GetInt("level"))
			if err != nil {
				return err
			}
			iterations := v.GetInt("iterations")
			if iterations <= 0 {
				return fmt.Errorf("iterations must be positive, got %d", iterations)
			}

			collector := metrics.NewCodecCollector("colcodec")
			reg := prometheus.NewRegistry()
			if err := reg.Register(collector); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODEC\tSIZE\tRATIO\tCOMPRESS\tDECOMPRESS")
			for _, codec := range codecs {
				stats, err := benchCodec(collector.Instrument(codec), src, iterations)
				if err != nil {
					return fmt.Errorf("%s: %w", codec.Type(), err)
				}
				fmt.Fprintf(w, "%s\t%s\t%.3f\t%s/s\t%s/s\n",
					stats.Algorithm,
					humanize.Bytes(uint64(stats.CompressedSize)),
					stats.CompressionRatio(),
					humanize.Bytes(throughput(stats.OriginalSize, stats.CompressionTimeNs)),
					humanize.Bytes(throughput(stats.OriginalSize, stats.DecompressionTimeNs)),
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if v.GetBool("metrics") {
				return dumpMetrics(out, reg)
			}

			return nil
		},
	}

	cmd.Flags().StringSlice("codecs", nil, "codecs to measure, all when empty")
	cmd.Flags().Int("level", compress.DefaultLevel, "compression level, -1 for each codec's default")
	cmd.Flags().Int("iterations", 10, "calls per codec and direction")
	cmd.Flags().Bool("metrics", false, "print the collected Prometheus metrics")

	return cmd
}

func benchCodecs(names []string, level int) ([]compress.Codec, error) {
	types := format.CompressionTypes()
	if len(names) > 0 {
		types = types[:0:0]
		for _, name := range names {
			ct, err := parseCodec(strings.TrimSpace(name))
			if err != nil {
				return nil, err
			}
			types = append(types, ct)
		}
	}

	codecs := make([]compress.Codec, 0, len(types))
	for _, ct := range types {
		codec, err := compress.CreateCodec(ct, level)
		if err != nil {
			return nil, err
		}
		codecs = append(codecs, codec)
	}

	return codecs, nil
}

// benchCodec returns per-call averages over iterations.
func benchCodec(codec compress.Codec, src []byte, iterations int) (compress.CompressionStats, error) {
	stats := compress.CompressionStats{
		Algorithm:    codec.Type(),
		OriginalSize: int64(len(src)),
	}

	var block []byte
	start := time.Now()
	for range iterations {
		var err error
		if block, err = codec.Compress(src); err != nil {
			return stats, err
		}
	}
	stats.CompressionTimeNs = time.Since(start).Nanoseconds() / int64(iterations)
	stats.CompressedSize = int64(len(block))

	start = time.Now()
	for range iterations {
		if _, err := codec.Decompress(block, len(src)); err != nil {
			return stats, err
		}
	}
	stats.DecompressionTimeNs = time.Since(start).Nanoseconds() / int64(iterations)

	return stats, nil
}

func throughput(bytes, ns int64) uint64 {
	if ns <= 0 {
		return 0
	}

	return uint64(float64(bytes) * float64(time.Second) / float64(ns))
}

func dumpMetrics(out io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}

	lines := make([]string, 0, 64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}

			var value string
			switch {
			case m.GetCounter() != nil:
				value = fmt.Sprintf("%g", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				value = fmt.Sprintf("count=%d sum=%gs", h.GetSampleCount(), h.GetSampleSum())
			default:
				continue
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %s", mf.GetName(), strings.Join(labels, ","), value))
		}
	}
	sort.Strings(lines)

	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}

	return nil
}
