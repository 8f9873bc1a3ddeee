package constants

import (
	"bytes"
	"strings"
)

// ImageFormat is the sniffed container format of an uploaded image.
type ImageFormat string

const (
	FormatPNG     ImageFormat = "PNG"
	FormatJPEG    ImageFormat = "JPEG"
	FormatGIF     ImageFormat = "GIF"
	FormatBMP     ImageFormat = "BMP"
	FormatTIFF    ImageFormat = "TIFF"
	FormatHEIC    ImageFormat = "HEIC"
	FormatRAW     ImageFormat = "RAW"
	FormatUnknown ImageFormat = ""
)

// heicBrands are the ISO-BMFF ftyp brands that mark HEIF family
// containers. The recognizer's decoder stack cannot safely open these,
// so they are rejected before any recognition work starts.
var heicBrands = [][]byte{
	[]byte("heic"), []byte("heix"), []byte("hevc"), []byte("hevx"),
	[]byte("heim"), []byte("heis"), []byte("heif"),
	[]byte("mif1"), []byte("msf1"),
}

// DetectImageFormat sniffs the container from the leading bytes of the
// payload. It never reads past the first 16 bytes.
func DetectImageFormat(b []byte) ImageFormat {
	if len(b) < 12 {
		return FormatUnknown
	}
	switch {
	case bytes.HasPrefix(b, []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG
	case bytes.HasPrefix(b, []byte("\xff\xd8\xff")):
		return FormatJPEG
	case bytes.HasPrefix(b, []byte("GIF87a")) || bytes.HasPrefix(b, []byte("GIF89a")):
		return FormatGIF
	case bytes.HasPrefix(b, []byte("BM")):
		return FormatBMP
	}
	// ISO-BMFF: size (4 bytes) + "ftyp" + brand.
	if bytes.Equal(b[4:8], []byte("ftyp")) {
		brand := b[8:12]
		for _, h := range heicBrands {
			if bytes.Equal(brand, h) {
				return FormatHEIC
			}
		}
		return FormatUnknown
	}
	if bytes.HasPrefix(b, []byte("II*\x00")) || bytes.HasPrefix(b, []byte("MM\x00*")) {
		// Canon CR2 is a TIFF with a "CR" marker at offset 8.
		if len(b) >= 10 && b[8] == 'C' && b[9] == 'R' {
			return FormatRAW
		}
		return FormatTIFF
	}
	return FormatUnknown
}

// IsSupportedFormat reports whether the pipeline can decode the
// container. HEIF-family and camera-RAW containers are rejected up
// front with a client-correctable error.
func IsSupportedFormat(f ImageFormat) bool {
	switch f {
	case FormatPNG, FormatJPEG, FormatGIF, FormatBMP, FormatTIFF:
		return true
	default:
		return false
	}
}

func normalizeUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
