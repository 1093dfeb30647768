package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// Predictor values, numbered as in PostScript LanguageLevel 3 filters.
const (
	NoPrediction = 1
	PNGNone      = 10
	PNGSub       = 11
	PNGUp        = 12
	PNGAverage   = 13
	PNGPaeth     = 14
	PNGOptimum   = 15
)

// Predictor describes how filtered sample rows are laid out.
// A nil *Predictor means no prediction.
type Predictor struct {
	Kind             int
	Columns          int
	Colors           int
	BitsPerComponent int
}

func (p *Predictor) columns() int {
	if p.Columns <= 0 {
		return 1
	}
	return p.Columns
}

func (p *Predictor) colors() int {
	if p.Colors <= 0 {
		return 1
	}
	return p.Colors
}

func (p *Predictor) bpc() int {
	if p.BitsPerComponent <= 0 {
		return 8
	}
	return p.BitsPerComponent
}

// FlateDecode decompresses zlib data and reverses the predictor, if any.
func FlateDecode(data []byte, pred *Predictor) ([]byte, error) {
	decompressed, err := zlibDecompress(data)
	if err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}

	if pred == nil || pred.Kind == NoPrediction || pred.Kind == 0 {
		return decompressed, nil
	}

	decompressed, err = applyPredictor(decompressed, pred)
	if err != nil {
		return nil, fmt.Errorf("predictor failed: %w", err)
	}
	return decompressed, nil
}

// FlateEncode compresses data with zlib at the default level.
func FlateEncode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}
	return buf.Bytes(), nil
}

func zlibDecompress(data []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib reader: %w", err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return buf.Bytes(), nil
}

func applyPredictor(data []byte, pred *Predictor) ([]byte, error) {
	switch {
	case pred.Kind >= PNGNone && pred.Kind <= PNGOptimum:
		return applyPNGPredictor(data, pred)
	}
	return nil, fmt.Errorf("unsupported predictor: %d", pred.Kind)
}

// applyPNGPredictor reverses PNG row filtering. Every row carries its own
// filter type byte, so the exact PNG kind only selects the row layout.
func applyPNGPredictor(data []byte, pred *Predictor) ([]byte, error) {
	bpc := pred.bpc()
	if bpc != 8 && bpc != 16 {
		return nil, fmt.Errorf("PNG predictor only supports 8 or 16 bits per component, got %d", bpc)
	}

	bytesPerPixel := pred.colors() * bpc / 8
	rowLength := pred.columns() * bytesPerPixel
	rowSize := rowLength + 1

	if len(data)%rowSize != 0 {
		return nil, fmt.Errorf("data size %d is not a multiple of row size %d", len(data), rowSize)
	}

	numRows := len(data) / rowSize
	result := make([]byte, numRows*rowLength)
	var prev []byte

	for row := 0; row < numRows; row++ {
		in := data[row*rowSize : (row+1)*rowSize]
		out := result[row*rowLength : (row+1)*rowLength]
		if err := decodePNGRow(out, in[1:], in[0], bytesPerPixel, prev); err != nil {
			return nil, fmt.Errorf("failed to decode row %d: %w", row, err)
		}
		prev = out
	}
	return result, nil
}

// decodePNGRow reconstructs one row into out. prev is nil for the first row.
func decodePNGRow(out, in []byte, filter byte, bpp int, prev []byte) error {
	for i := range in {
		var left, up, upLeft byte
		if i >= bpp {
			left = out[i-bpp]
		}
		if prev != nil {
			up = prev[i]
			if i >= bpp {
				upLeft = prev[i-bpp]
			}
		}

		var predicted byte
		switch filter {
		case 0:
		case 1:
			predicted = left
		case 2:
			predicted = up
		case 3:
			predicted = byte((int(left) + int(up)) / 2)
		case 4:
			predicted = paethPredictor(left, up, upLeft)
		default:
			return fmt.Errorf("unknown PNG filter type: %d", filter)
		}
		out[i] = in[i] + predicted
	}
	return nil
}

// paethPredictor picks the neighbour closest to left+up-upLeft.
func paethPredictor(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))

	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
