package word

import (
	"bytes"
	"encoding/binary"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/tsawler/wordview/internal/filters"
	"github.com/tsawler/wordview/model"
)

const picfMinHeader = 0x24

// maxPicturePixels bounds the decoded size of one picture.
const maxPicturePixels = 1 << 25

var imageSignatures = []struct {
	format model.ImageFormat
	magic  []byte
}{
	{model.ImagePNG, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}},
	{model.ImageJPEG, []byte{0xFF, 0xD8, 0xFF}},
	{model.ImageTIFF, []byte{'I', 'I', 0x2A, 0x00}},
	{model.ImageTIFF, []byte{'M', 'M', 0x00, 0x2A}},
	{model.ImageBMP, []byte{'B', 'M'}},
}

// picture reads the PICF at fc in the picture stream and returns the
// embedded image, or nil when there is none that can be shown.
func (l *layout) picture(fc uint32, cfg *config) (*model.Image, error) {
	const op = "picf"
	pics := l.pictures
	if uint64(fc)+picfMinHeader > uint64(len(pics)) {
		cfg.warnf(op, "picture at %d outside the picture stream", fc)
		return nil, nil
	}
	le := binary.LittleEndian
	h := pics[fc:]
	lcb := uint64(le.Uint32(h))
	cbHeader := uint64(le.Uint16(h[4:]))
	if cbHeader < picfMinHeader || lcb < cbHeader {
		cfg.warnf(op, "picture at %d has header %d and length %d", fc, cbHeader, lcb)
		return nil, nil
	}
	end := uint64(fc) + lcb
	if end > uint64(len(pics)) {
		cfg.warnf(op, "picture at %d clamped to the stream end", fc)
		end = uint64(len(pics))
	}
	if uint64(fc)+cbHeader >= end {
		cfg.warnf(op, "picture at %d has no data after its %d byte header", fc, cbHeader)
		return nil, nil
	}
	payload := pics[uint64(fc)+cbHeader : end]

	img := findImage(payload)
	if img == nil {
		cfg.warnf(op, "picture at %d has no recognised image data", fc)
		return nil, nil
	}
	if int64(img.PixelWidth)*int64(img.PixelHeight) > maxPicturePixels {
		cfg.warnf(op, "picture at %d is %dx%d pixels, too large to show", fc, img.PixelWidth, img.PixelHeight)
		return nil, nil
	}
	if img.Format == model.ImagePNG {
		if err := checkPNG(img.Data); err != nil {
			return nil, &Error{Kind: KindDecompression, Op: op, Err: err}
		}
	}

	scale := func(goal int16, s uint16) float64 {
		if s == 0 {
			s = 1000
		}
		return float64(goal) * float64(s) / 1000 / 20
	}
	img.Width = scale(int16(le.Uint16(h[0x1C:])), le.Uint16(h[0x20:]))
	img.Height = scale(int16(le.Uint16(h[0x1E:])), le.Uint16(h[0x22:]))
	return img, nil
}

// findImage returns the first decodable image in payload.
func findImage(payload []byte) *model.Image {
	for pos := 0; pos < len(payload); pos++ {
		for _, sig := range imageSignatures {
			if !bytes.HasPrefix(payload[pos:], sig.magic) {
				continue
			}
			data := payload[pos:]
			cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				continue
			}
			if sig.format == model.ImagePNG {
				data = trimPNG(data)
			}
			return &model.Image{Format: sig.format, Data: data, PixelWidth: cfg.Width, PixelHeight: cfg.Height}
		}
	}
	return nil
}

type pngChunk struct {
	typ  string
	data []byte
}

func pngChunks(data []byte) []pngChunk {
	var chunks []pngChunk
	for off := 8; off+12 <= len(data); {
		n := int(binary.BigEndian.Uint32(data[off:]))
		if n < 0 || off+12+n > len(data) {
			break
		}
		c := pngChunk{typ: string(data[off+4 : off+8]), data: data[off+8 : off+8+n]}
		chunks = append(chunks, c)
		off += 12 + n
		if c.typ == "IEND" {
			break
		}
	}
	return chunks
}

// trimPNG cuts data after the IEND chunk.
func trimPNG(data []byte) []byte {
	off := 8
	for _, c := range pngChunks(data) {
		off += 12 + len(c.data)
	}
	if off > len(data) {
		return data
	}
	return data[:off]
}

// checkPNG inflates the image data of a PNG and reverses its row filters.
func checkPNG(data []byte) error {
	var idat bytes.Buffer
	var pred *filters.Predictor
	for _, c := range pngChunks(data) {
		switch c.typ {
		case "IHDR":
			if len(c.data) < 13 {
				return nil
			}
			depth, ctype, interlace := int(c.data[8]), c.data[9], c.data[12]
			colors := map[byte]int{0: 1, 2: 3, 3: 1, 4: 2, 6: 4}[ctype]
			if interlace == 0 && colors > 0 && (depth == 8 || depth == 16) {
				pred = &filters.Predictor{
					Kind:             filters.PNGOptimum,
					Columns:          int(binary.BigEndian.Uint32(c.data)),
					Colors:           colors,
					BitsPerComponent: depth,
				}
			}
		case "IDAT":
			idat.Write(c.data)
		}
	}
	_, err := filters.FlateDecode(idat.Bytes(), pred)
	return err
}
