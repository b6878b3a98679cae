package pool

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ByteBuffer Tests
// =============================================================================

func TestByteBuffer_WriteAndReset(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.MustWrite([]byte("abc"))
	require.NoError(t, bb.WriteByte('d'))
	n, err := bb.Write([]byte("ef"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte("abcdef"), bb.Bytes())
	assert.Equal(t, 6, bb.Len())

	originalCap := bb.Cap()
	bb.Reset()
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, originalCap, bb.Cap())
}

func TestByteBuffer_Grow(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.MustWrite([]byte("12345678"))

	bb.Grow(4)
	assert.GreaterOrEqual(t, bb.Cap()-bb.Len(), 4)
	assert.Equal(t, []byte("12345678"), bb.Bytes(), "grow must preserve data")

	large := NewByteBuffer(8 * PageBufferDefaultSize)
	large.B = large.B[:len(large.B)+8*PageBufferDefaultSize]
	large.Grow(1)
	assert.GreaterOrEqual(t, large.Cap(), 8*PageBufferDefaultSize+2*PageBufferDefaultSize)

	before := bb.Cap()
	bb.Grow(0)
	assert.Equal(t, before, bb.Cap())
}

func TestByteBuffer_Extend(t *testing.T) {
	bb := NewByteBuffer(2)
	bb.MustWrite([]byte{1})
	region := bb.Extend(3)
	require.Len(t, region, 3)
	copy(region, []byte{2, 3, 4})
	assert.Equal(t, []byte{1, 2, 3, 4}, bb.Bytes())
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.MustWrite([]byte("page"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, "page", out.String())
}

// =============================================================================
// ByteBufferPool Tests
// =============================================================================

func TestPageBuffer_GetPut(t *testing.T) {
	bb := GetPageBuffer()
	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	bb.MustWrite([]byte("dirty"))
	PutPageBuffer(bb)
	PutPageBuffer(nil)

	again := GetPageBuffer()
	assert.Equal(t, 0, again.Len(), "pooled buffers come back empty")
	PutPageBuffer(again)
}

func TestByteBufferPool_MaxThreshold(t *testing.T) {
	p := NewByteBufferPool(16, 32)

	big := NewByteBuffer(64)
	big.MustWrite([]byte("oversized"))
	p.Put(big)

	got := p.Get()
	assert.Equal(t, 0, got.Len())
	assert.LessOrEqual(t, got.Cap(), 32)
}

func TestByteBufferPool_Concurrent(t *testing.T) {
	p := NewByteBufferPool(32, 0)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bb := p.Get()
				bb.MustWrite([]byte{byte(i), byte(j)})
				assert.Equal(t, 2, bb.Len())
				p.Put(bb)
			}
		}()
	}
	wg.Wait()
}

// =============================================================================
// SlicePool Tests
// =============================================================================

func TestSlicePool_Get(t *testing.T) {
	s, release := Uint32s.Get(100)
	require.Len(t, s, 100)
	s[0] = 7
	release()

	s2, release2 := Uint32s.Get(10)
	defer release2()
	require.Len(t, s2, 10)

	big, releaseBig := Int64s.Get(5000)
	defer releaseBig()
	require.Len(t, big, 5000)
}

func TestSlicePool_Custom(t *testing.T) {
	p := NewSlicePool[float64]()
	s, release := p.Get(3)
	defer release()
	require.Len(t, s, 3)
}

func TestSlicePool_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 1; j < 200; j++ {
				s, release := Int32s.Get(j)
				for k := range s {
					s[k] = int32(i)
				}
				for k := range s {
					assert.Equal(t, int32(i), s[k])
				}
				release()
			}
		}()
	}
	wg.Wait()
}
