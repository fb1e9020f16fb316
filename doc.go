// Package glzcodec decodes SPICE LZ and GLZ image streams into 32-bit
// BGRA raster buffers.
//
// SPICE streams two kinds of encoded frames in a single temporal
// sequence: self-contained LZ frames and differentially encoded GLZ
// frames that reference pixels from previously decoded frames via a
// shared sliding dictionary. DecodeLZ handles the former; a Decoder's
// DecodeGLZ method handles the latter, maintaining the dictionary window
// a stream of GLZ frames shares.
//
// Transport framing, LZ4 block decompression, and zlib inflation for
// composite SPICE image types are handled by internal/composite, which
// wires in github.com/pierrec/lz4/v4 and the standard library's
// compress/zlib rather than reimplementing either.
//
// Basic usage for a GLZ stream:
//
//	dec := glzcodec.NewDecoder(glzcodec.DecoderConfig{})
//	header, _, err := dec.DecodeGLZ(frame, output)
package glzcodec
