package bytecode

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ImageVersion is the current image format version.
// Increment when making incompatible changes to the format.
const ImageVersion uint16 = 1

// ImageMagic starts every encoded image.
var ImageMagic = []byte{'H', 'E', 'L', 'V'}

type image struct {
	Magic    []byte   `cbor:"1,keyasint"`
	Version  uint16   `cbor:"2,keyasint"`
	Programs [][]byte `cbor:"3,keyasint"`
}

var imageEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	imageEncMode = em
}

var (
	errImageMagic = errors.New("not a helv image")
	errImageEmpty = errors.New("image has no entry program")
)

// MarshalImage serializes a table into a self-describing binary image.
func MarshalImage(t *Table) ([]byte, error) {
	img := image{
		Magic:    ImageMagic,
		Version:  ImageVersion,
		Programs: make([][]byte, t.Len()),
	}
	for i := range img.Programs {
		img.Programs[i] = t.Code(i)
	}
	data, err := imageEncMode.Marshal(img)
	if err != nil {
		return nil, fmt.Errorf("bytecode: marshal image: %w", err)
	}
	// a raw magic prefix lets loaders sniff images without decoding them
	return append(append([]byte(nil), ImageMagic...), data...), nil
}

// IsImage reports whether data looks like an image made by MarshalImage.
func IsImage(data []byte) bool { return bytes.HasPrefix(data, ImageMagic) }

// UnmarshalImage decodes an image back into a table of complete programs.
func UnmarshalImage(data []byte) (*Table, error) {
	if !IsImage(data) {
		return nil, fmt.Errorf("bytecode: unmarshal image: %w", errImageMagic)
	}
	var img image
	if err := cbor.Unmarshal(data[len(ImageMagic):], &img); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal image: %w", err)
	}
	if !bytes.Equal(img.Magic, ImageMagic) {
		return nil, fmt.Errorf("bytecode: unmarshal image: %w", errImageMagic)
	}
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("bytecode: unmarshal image: unsupported version %v", img.Version)
	}
	if len(img.Programs) == 0 {
		return nil, fmt.Errorf("bytecode: unmarshal image: %w", errImageEmpty)
	}
	if len(img.Programs) > MaxPrograms {
		return nil, fmt.Errorf("bytecode: unmarshal image: %v programs exceed %v", len(img.Programs), MaxPrograms)
	}
	return NewTable(img.Programs...), nil
}
