// Package metrics instruments compression codecs with Prometheus metrics.
//
//	collector := metrics.NewCodecCollector("colcodec")
//	prometheus.MustRegister(collector)
//
//	zstd, _ := compress.GetCodec(format.CompressionZstd)
//	codec := collector.Instrument(zstd)
//	compressed, err := codec.Compress(page)
//
// An instrumented codec records, per codec name and direction, the number of calls by
// outcome, the bytes consumed and produced, and the call latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/colcodec/compress"
	"github.com/arloliu/colcodec/errs"
)

const (
	OpCompress   = "compress"
	OpDecompress = "decompress"

	StatusOK              = "ok"
	StatusCapacity        = "capacity"
	StatusMalformed       = "malformed"
	StatusInvalidArgument = "invalid_argument"
	StatusError           = "error"
)

// CodecCollector owns the codec metric vectors. It implements prometheus.Collector so
// one registration covers all of them.
type CodecCollector struct {
	calls    *prometheus.CounterVec
	bytesIn  *prometheus.CounterVec
	bytesOut *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ prometheus.Collector = (*CodecCollector)(nil)

// NewCodecCollector creates unregistered codec metrics under namespace.
func NewCodecCollector(namespace string) *CodecCollector {
	return &CodecCollector{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codec_calls_total",
			Help:      "Total codec calls by codec, operation and outcome.",
		}, []string{"codec", "op", "status"}),
		bytesIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codec_input_bytes_total",
			Help:      "Total bytes passed to successful codec calls.",
		}, []string{"codec", "op"}),
		bytesOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codec_output_bytes_total",
			Help:      "Total bytes produced by successful codec calls.",
		}, []string{"codec", "op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "codec_duration_seconds",
			Help:      "Time spent in codec calls.",
			// Pages are KBs to a few MBs: 1us to ~4s.
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12),
		}, []string{"codec", "op"}),
	}
}

func (c *CodecCollector) Describe(ch chan<- *prometheus.Desc) {
	c.calls.Describe(ch)
	c.bytesIn.Describe(ch)
	c.bytesOut.Describe(ch)
	c.duration.Describe(ch)
}

func (c *CodecCollector) Collect(ch chan<- prometheus.Metric) {
	c.calls.Collect(ch)
	c.bytesIn.Collect(ch)
	c.bytesOut.Collect(ch)
	c.duration.Collect(ch)
}

// Observe records one codec call. A failed call counts under its error kind and adds
// no bytes.
func (c *CodecCollector) Observe(codec, op string, in, out int, elapsed time.Duration, err error) {
	c.duration.WithLabelValues(codec, op).Observe(elapsed.Seconds())
	if err != nil {
		c.calls.WithLabelValues(codec, op, status(err)).Inc()
		return
	}
	c.calls.WithLabelValues(codec, op, StatusOK).Inc()
	c.bytesIn.WithLabelValues(codec, op).Add(float64(in))
	c.bytesOut.WithLabelValues(codec, op).Add(float64(out))
}

// Instrument wraps codec so every call is recorded by c.
func (c *CodecCollector) Instrument(codec compress.Codec) compress.Codec {
	return &instrumentedCodec{Codec: codec, name: codec.Type().String(), collector: c}
}

type instrumentedCodec struct {
	compress.Codec
	name      string
	collector *CodecCollector
}

func (i *instrumentedCodec) Compress(data []byte) ([]byte, error) {
	start := time.Now()
	out, err := i.Codec.Compress(data)
	i.collector.Observe(i.name, OpCompress, len(data), len(out), time.Since(start), err)

	return out, err
}

func (i *instrumentedCodec) Decompress(data []byte, expectedSize int) ([]byte, error) {
	start := time.Now()
	out, err := i.Codec.Decompress(data, expectedSize)
	i.collector.Observe(i.name, OpDecompress, len(data), len(out), time.Since(start), err)

	return out, err
}

func status(err error) string {
	switch errs.KindOf(err) {
	case errs.KindCapacity:
		return StatusCapacity
	case errs.KindMalformed:
		return StatusMalformed
	case errs.KindInvalidArgument:
		return StatusInvalidArgument
	default:
		return StatusError
	}
}
