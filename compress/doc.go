// Package compress provides the codecs used to read compressed session
// documents and to write compressed output files.
//
// # Overview
//
// Firefox has stored its session state as mozLz4 since version 56
// (sessionstore.jsonlz4, recovery.jsonlz4, recovery.baklz4). Older profiles
// keep plain sessionstore.js files, and archived copies are often gzip or
// zstd compressed. Every format is exposed through the same interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Supported Algorithms
//
//   - None: pass-through
//   - MozLZ4: "mozLz40\0" magic, little-endian uint32 size, one LZ4 block
//   - Zstd: klauspost/compress/zstd, or valyala/gozstd with -tags cgo_zstd
//   - Gzip: klauspost/compress/gzip
//   - S2: klauspost/compress/s2 block format
//   - LZ4: raw pierrec/lz4 block without header
//
// # Detection
//
// Detect inspects magic bytes first and falls back to the file extension:
//
//	typ := compress.Detect(data, "recovery.jsonlz4")
//	codec, err := compress.GetCodec(typ)
//	if err != nil {
//	    return err
//	}
//	doc, err := codec.Decompress(data)
//
// # Thread Safety
//
// All codecs are stateless values backed by pools and are safe for
// concurrent use.
package compress
