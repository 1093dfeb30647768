package model

// ImageFormat identifies the encoding of embedded picture data.
type ImageFormat int

const (
	ImageUnknown ImageFormat = iota
	ImagePNG
	ImageJPEG
	ImageBMP
	ImageTIFF
)

// String returns the common name of the format.
func (f ImageFormat) String() string {
	switch f {
	case ImagePNG:
		return "png"
	case ImageJPEG:
		return "jpeg"
	case ImageBMP:
		return "bmp"
	case ImageTIFF:
		return "tiff"
	default:
		return "unknown"
	}
}

// Image is a picture found in the document.
type Image struct {
	Format ImageFormat
	// Data is the complete encoded file (PNG, JPEG, ...).
	Data []byte
	// PixelWidth and PixelHeight come from the image header.
	PixelWidth  int
	PixelHeight int
	// Width and Height are the display size in points.
	Width  float64
	Height float64
}
