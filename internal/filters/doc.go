// Package filters implements the byte-level codecs used when pictures
// embedded in Word documents are validated and re-emitted as PostScript.
//
// # Decoding
//
// FlateDecode inflates zlib data and optionally reverses a predictor:
//
//	raw, err := filters.FlateDecode(idat, &filters.Predictor{
//	    Kind:    filters.PNGOptimum,
//	    Columns: width,
//	    Colors:  3,
//	})
//
// Predictor kinds follow the PostScript numbering: 1 is identity and
// 10-15 are the PNG row filters.
//
// # Encoding
//
// ASCII85Encode produces line-wrapped, 7-bit output that can be
// embedded in a PostScript program; FlateEncode produces zlib data
// for /FlateDecode image sources.
package filters
