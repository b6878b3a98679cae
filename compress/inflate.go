package compress

import (
	"github.com/arloliu/colcodec/bitpack"
	"github.com/arloliu/colcodec/errs"
)

const inflateOp = "compress.DeflateDecompressBlock"

// inflater decodes one raw DEFLATE stream. The dynamic decoders live here rather than
// on the stack of every block.
type inflater struct {
	r       bitpack.Reader
	dst     []byte
	d       int
	litDec  huffmanDecoder
	distDec huffmanDecoder
	clDec   huffmanDecoder
	lens    [deflateNumLitLens + numDistSymbols]uint8
}

// DeflateDecompressBlock decodes a raw DEFLATE stream (RFC 1951) from src into dst and
// returns the number of bytes produced.
//
// Stored, fixed-Huffman and dynamic-Huffman blocks are decoded until the block with
// the final flag. Output beyond len(dst) fails with errs.ErrCapacity; invalid block
// types, bad code lengths, invalid codes, distances reaching before the start of the
// output and truncated input fail with errs.ErrMalformed.
func DeflateDecompressBlock(dst, src []byte) (int, error) {
	n, _, err := inflate(dst, src)
	return n, err
}

// inflate is DeflateDecompressBlock that also reports how many input bytes the stream
// occupied, for framings that carry a trailer after it.
func inflate(dst, src []byte) (int, int, error) {
	f := &inflater{dst: dst}
	f.r.Reset(src)

	for {
		hdr, ok := f.r.ReadBits(3)
		if !ok {
			return 0, 0, errs.Malformed(inflateOp, "truncated block header")
		}

		var err error
		switch hdr >> 1 {
		case 0:
			err = f.stored()
		case 1:
			ft := getFixedTables()
			err = f.huffmanBlock(&ft.litDec, &ft.distDec)
		case 2:
			if err = f.readDynamic(); err == nil {
				err = f.huffmanBlock(&f.litDec, &f.distDec)
			}
		default:
			err = errs.Malformed(inflateOp, "reserved block type 3")
		}
		if err != nil {
			return 0, 0, err
		}

		if hdr&1 == 1 {
			break
		}
	}
	f.r.AlignByte()

	return f.d, f.r.Offset(), nil
}

func (f *inflater) stored() error {
	hdr, ok := f.r.ReadBytes(4)
	if !ok {
		return errs.Malformed(inflateOp, "truncated stored block header")
	}
	n := int(hdr[0]) | int(hdr[1])<<8
	nn := int(hdr[2]) | int(hdr[3])<<8
	if n != ^nn&0xffff {
		return errs.Malformed(inflateOp, "stored block length %d does not match its complement", n)
	}
	data, ok := f.r.ReadBytes(n)
	if !ok {
		return errs.Malformed(inflateOp, "stored block of %d bytes exceeds input", n)
	}
	if n > len(f.dst)-f.d {
		return errs.Capacity(inflateOp, "stored block of %d bytes exceeds output at offset %d", n, f.d)
	}
	f.d += copy(f.dst[f.d:], data)

	return nil
}

func (f *inflater) readBits(n int, what string) (int, error) {
	v, ok := f.r.ReadBits(n)
	if !ok {
		return 0, errs.Malformed(inflateOp, "truncated %s", what)
	}

	return int(v), nil
}

func (f *inflater) readDynamic() error {
	hlit, err := f.readBits(5, "dynamic header")
	if err != nil {
		return err
	}
	hdist, err := f.readBits(5, "dynamic header")
	if err != nil {
		return err
	}
	hclen, err := f.readBits(4, "dynamic header")
	if err != nil {
		return err
	}
	hlit += deflateMinLitLenCode
	hdist++
	hclen += 4
	if hlit > deflateNumLitLens || hdist > numDistSymbols {
		return errs.Malformed(inflateOp, "too many codes: %d literal/length, %d distance", hlit, hdist)
	}

	var clLens [numCodeLenSymbols]uint8
	for _, sym := range codeLenOrder[:hclen] {
		v, err := f.readBits(3, "code length code")
		if err != nil {
			return err
		}
		clLens[sym] = uint8(v)
	}
	if err := f.clDec.init(clLens[:]); err != nil {
		return err
	}

	lens := f.lens[:hlit+hdist]
	for i := 0; i < len(lens); {
		sym, err := f.clDec.decode(&f.r)
		if err != nil {
			return err
		}
		if sym < 16 {
			lens[i] = uint8(sym)
			i++

			continue
		}

		var rep int
		var val uint8
		switch sym {
		case 16:
			if i == 0 {
				return errs.Malformed(inflateOp, "repeat with no previous length")
			}
			val = lens[i-1]
			rep, err = f.readBits(2, "repeat count")
			rep += 3
		case 17:
			rep, err = f.readBits(3, "repeat count")
			rep += 3
		default:
			rep, err = f.readBits(7, "repeat count")
			rep += 11
		}
		if err != nil {
			return err
		}
		if i+rep > len(lens) {
			return errs.Malformed(inflateOp, "code length repeat overruns %d lengths", len(lens))
		}
		for ; rep > 0; rep-- {
			lens[i] = val
			i++
		}
	}

	if lens[endOfBlock] == 0 {
		return errs.Malformed(inflateOp, "no code for end of block")
	}
	if err := f.litDec.init(lens[:hlit]); err != nil {
		return err
	}

	return f.distDec.init(lens[hlit:])
}

func (f *inflater) huffmanBlock(lit, dist *huffmanDecoder) error {
	for {
		sym, err := lit.decode(&f.r)
		if err != nil {
			return err
		}

		switch {
		case sym < endOfBlock:
			if f.d >= len(f.dst) {
				return errs.Capacity(inflateOp, "literal exceeds output at offset %d", f.d)
			}
			f.dst[f.d] = byte(sym)
			f.d++

			continue
		case sym == endOfBlock:
			return nil
		}

		lc := sym - deflateMinLitLenCode
		if lc >= len(lengthBase) {
			return errs.Malformed(inflateOp, "invalid length symbol %d", sym)
		}
		extra, err := f.readBits(int(lengthExtra[lc]), "length extra bits")
		if err != nil {
			return err
		}
		length := int(lengthBase[lc]) + extra

		dc, err := dist.decode(&f.r)
		if err != nil {
			return err
		}
		if dc >= numDistSymbols {
			return errs.Malformed(inflateOp, "invalid distance symbol %d", dc)
		}
		extra, err = f.readBits(int(distExtra[dc]), "distance extra bits")
		if err != nil {
			return err
		}
		distance := int(distBase[dc]) + extra

		if distance > f.d {
			return errs.Malformed(inflateOp, "distance %d exceeds %d bytes of output", distance, f.d)
		}
		if length > len(f.dst)-f.d {
			return errs.Capacity(inflateOp, "match of %d bytes exceeds output at offset %d", length, f.d)
		}
		copyBackref(f.dst, f.d, distance, length)
		f.d += length
	}
}
