package diagram

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/tsawler/wordview/internal/filters"
	"github.com/tsawler/wordview/model"
)

const (
	// maxDPI bounds the resolution of re-encoded pictures.
	maxDPI = 300
	// maxImagePixels bounds the pixel count of a picture before decoding.
	maxImagePixels = 1 << 25
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

type psImage struct {
	width, height float64
	pw, ph        int
	colors        int
	filters       string
	data          []byte
}

// preparePSImage scales the picture to fit the text area and encodes its
// samples. It returns nil for pictures that cannot be decoded.
func preparePSImage(img *model.Image, level ImageLevel, area model.BBox) *psImage {
	pw, ph := img.PixelWidth, img.PixelHeight
	if pw <= 0 || ph <= 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
		if err != nil {
			return nil
		}
		pw, ph = cfg.Width, cfg.Height
	}
	if int64(pw)*int64(ph) > maxImagePixels {
		return nil
	}
	w, h := img.Width, img.Height
	if w <= 0 || h <= 0 {
		w, h = float64(pw), float64(ph)
	}
	if scale := math.Min(area.Width/w, area.Height/h); scale < 1 {
		w, h = w*scale, h*scale
	}

	pi := &psImage{width: w, height: h}
	switch {
	case level == ImagesLevel3 && img.Format == model.ImagePNG && pi.passPNG(img.Data):
	case img.Format == model.ImageJPEG && pi.passJPEG(img.Data):
	default:
		if !pi.resample(img.Data, level) {
			return nil
		}
	}
	return pi
}

// passPNG forwards the zlib stream of 8-bit, non-interlaced gray or RGB
// PNG files; PNG row filters are PostScript predictor 15.
func (pi *psImage) passPNG(data []byte) bool {
	if !bytes.HasPrefix(data, pngSignature) {
		return false
	}
	var idat bytes.Buffer
	colors := 0
	for off := len(pngSignature); off+12 <= len(data); {
		n := int(binary.BigEndian.Uint32(data[off:]))
		typ := string(data[off+4 : off+8])
		if n < 0 || off+12+n > len(data) {
			return false
		}
		chunk := data[off+8 : off+8+n]
		switch typ {
		case "IHDR":
			if n < 13 {
				return false
			}
			pi.pw = int(binary.BigEndian.Uint32(chunk))
			pi.ph = int(binary.BigEndian.Uint32(chunk[4:]))
			depth, ctype, interlace := chunk[8], chunk[9], chunk[12]
			if depth != 8 || interlace != 0 {
				return false
			}
			switch ctype {
			case 0:
				colors = 1
			case 2:
				colors = 3
			default:
				return false
			}
		case "IDAT":
			idat.Write(chunk)
		}
		off += 12 + n
	}
	if colors == 0 || idat.Len() == 0 {
		return false
	}
	pi.colors = colors
	pi.filters = fmt.Sprintf("/ASCII85Decode filter << /Predictor 15 /Colors %d /Columns %d /BitsPerComponent 8 >> /FlateDecode filter", colors, pi.pw)
	pi.data = filters.ASCII85Encode(idat.Bytes())
	return true
}

// passJPEG forwards gray and YCbCr JPEG data to /DCTDecode.
func (pi *psImage) passJPEG(data []byte) bool {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || format != "jpeg" {
		return false
	}
	switch cfg.ColorModel {
	case color.GrayModel:
		pi.colors = 1
	case color.YCbCrModel:
		pi.colors = 3
	default:
		return false
	}
	pi.pw, pi.ph = cfg.Width, cfg.Height
	pi.filters = "/ASCII85Decode filter /DCTDecode filter"
	pi.data = filters.ASCII85Encode(data)
	return true
}

// resample decodes the picture, limits its resolution and emits RGB
// samples, zlib-compressed at level 3.
func (pi *psImage) resample(data []byte, level ImageLevel) bool {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return false
	}
	b := src.Bounds()
	maxW := int(math.Ceil(pi.width / 72 * maxDPI))
	maxH := int(math.Ceil(pi.height / 72 * maxDPI))
	dw, dh := b.Dx(), b.Dy()
	if dw > maxW || dh > maxH {
		scale := math.Min(float64(maxW)/float64(dw), float64(maxH)/float64(dh))
		dw = int(math.Max(1, math.Round(float64(dw)*scale)))
		dh = int(math.Max(1, math.Round(float64(dh)*scale)))
	}
	if dw == 0 || dh == 0 {
		return false
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	samples := make([]byte, 0, dw*dh*3)
	for y := 0; y < dh; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+dw*4]
		for x := 0; x < len(row); x += 4 {
			samples = append(samples, row[x], row[x+1], row[x+2])
		}
	}
	pi.pw, pi.ph, pi.colors = dw, dh, 3
	pi.filters = "/ASCII85Decode filter"
	if level == ImagesLevel3 {
		if z, err := filters.FlateEncode(samples); err == nil {
			samples = z
			pi.filters = "/ASCII85Decode filter /FlateDecode filter"
		}
	}
	pi.data = filters.ASCII85Encode(samples)
	return true
}

func (pi *psImage) write(out *dest, x, y float64) {
	space, decode := "/DeviceRGB", "[0 1 0 1 0 1]"
	if pi.colors == 1 {
		space, decode = "/DeviceGray", "[0 1]"
	}
	out.WriteString("gsave\n")
	out.Printf("%s %s translate %s %s scale\n", num(x), num(y), num(pi.width), num(pi.height))
	out.Printf("%s setcolorspace\n", space)
	out.Printf("<< /ImageType 1 /Width %d /Height %d /BitsPerComponent 8 /Decode %s\n", pi.pw, pi.ph, decode)
	out.Printf("   /ImageMatrix [%d 0 0 %d 0 %d]\n", pi.pw, -pi.ph, pi.ph)
	out.Printf("   /DataSource currentfile %s\n>> image\n", pi.filters)
	out.Write(pi.data)
	out.WriteString("\ngrestore\n")
}
