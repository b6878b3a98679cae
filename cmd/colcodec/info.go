package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/arloliu/colcodec"
	"github.com/arloliu/colcodec/simd"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the selected SIMD dispatch level and CPU features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := colcodec.GetCPUInfo()
			f := info.Features
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Go version:    %s\n", runtime.Version())
			fmt.Fprintf(out, "Arch:          %s\n", info.Arch)
			fmt.Fprintf(out, "Dispatch:      %s\n", info.Level)
			fmt.Fprintf(out, "Vector width:  %d bytes\n", info.VectorBytes)
			fmt.Fprintf(out, "Forced scalar: %t (%s)\n", simd.NoSimdEnv(), simd.NoSimdEnvVar)
			fmt.Fprintf(out, "Features:      sse4.2=%t avx2=%t avx512=%t neon=%t sve=%t crc32=%t\n",
				f.SSE42, f.AVX2, f.AVX512, f.NEON, f.SVE, f.CRC32)

			return nil
		},
	}
}
