package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	gsnappy "github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/cobra"

	"github.com/arloliu/colcodec/compress"
	"github.com/arloliu/colcodec/format"
	"github.com/arloliu/colcodec/internal/hash"
)

// referenceDecoders decode the block formats implemented in this module with an
// independent library.
var referenceDecoders = map[format.CompressionType]func(block []byte, size int) ([]byte, error){
	format.CompressionLZ4Raw: func(block []byte, size int) ([]byte, error) {
		out := make([]byte, max(size, 16))
		n, err := lz4.UncompressBlock(block, out)
		return out[:n], err
	},
	format.CompressionSnappy: func(block []byte, _ int) ([]byte, error) {
		return gsnappy.Decode(nil, block)
	},
	format.CompressionDeflate: func(block []byte, _ int) ([]byte, error) {
		r := flate.NewReader(bytes.NewReader(block))
		defer r.Close()

		return io.ReadAll(r)
	},
	format.CompressionGzip: func(block []byte, _ int) ([]byte, error) {
		r, err := pgzip.NewReader(bytes.NewReader(block))
		if err != nil {
			return nil, err
		}
		defer r.Close()

		return io.ReadAll(r)
	},
}

type verifyResult struct {
	codec      format.CompressionType
	size       int
	roundTrip  error
	reference  error
	referenced bool
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <input>",
		Short: "Round-trip a file through every codec and cross-check against reference decoders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			results := verifyAll(src)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "input: %d bytes, xxh64 %016x\n", len(src), hash.Bytes(src))
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODEC\tSIZE\tRATIO\tROUND TRIP\tREFERENCE")
			failed := 0
			for _, r := range results {
				ref := "-"
				if r.referenced {
					ref = status(r.reference)
				}
				if r.roundTrip != nil || r.reference != nil {
					failed++
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", r.codec, r.size, ratio(r.size, len(src)), status(r.roundTrip), ref)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d codec(s) failed verification", failed)
			}

			return nil
		},
	}
}

func verifyAll(src []byte) []verifyResult {
	want := hash.Bytes(src)
	results := make([]verifyResult, 0, len(format.CompressionTypes()))

	for _, ct := range format.CompressionTypes() {
		r := verifyResult{codec: ct}
		codec, err := compress.GetCodec(ct)
		if err != nil {
			r.roundTrip = err
			results = append(results, r)

			continue
		}

		block, err := codec.Compress(src)
		if err != nil {
			r.roundTrip = err
			results = append(results, r)

			continue
		}
		r.size = len(block)

		out, err := codec.Decompress(block, len(src))
		r.roundTrip = checkOutput(out, err, want)

		if ref, ok := referenceDecoders[ct]; ok {
			r.referenced = true
			out, err := ref(block, len(src))
			r.reference = checkOutput(out, err, want)
		}
		results = append(results, r)
	}

	return results
}

var errMismatch = errors.New("output differs from input")

func checkOutput(out []byte, err error, want uint64) error {
	if err != nil {
		return err
	}
	if hash.Bytes(out) != want {
		return errMismatch
	}

	return nil
}

func status(err error) string {
	if err != nil {
		return "FAIL: " + err.Error()
	}

	return "ok"
}
