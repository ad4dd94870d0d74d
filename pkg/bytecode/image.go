package bytecode

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// ImageVersion is the current chunk image format version.
// Increment when making incompatible changes to the format.
const ImageVersion uint16 = 1

// ImageMagic prefixes every chunk image file: "TVBC" (Tova ByteCode).
var ImageMagic = []byte{'T', 'V', 'B', 'C'}

// cborEncMode uses canonical encoding for deterministic images.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Constant kind tags used in the image encoding. Values in the pool
// are flattened to a tagged form, since heap references cannot cross
// a serialization boundary.
const (
	imageConstNull  uint8 = 0
	imageConstBool  uint8 = 1
	imageConstInt   uint8 = 2
	imageConstFloat uint8 = 3
	imageConstStr   uint8 = 4
)

type imageConstant struct {
	Kind  uint8   `cbor:"k"`
	Bool  bool    `cbor:"b,omitempty"`
	Int   int64   `cbor:"i,omitempty"`
	Float float64 `cbor:"f,omitempty"`
	Str   []byte  `cbor:"s,omitempty"`
}

type imageChunk struct {
	Version   uint16          `cbor:"v"`
	Code      []byte          `cbor:"c"`
	Lines     []int           `cbor:"l"`
	Constants []imageConstant `cbor:"p"`
}

func encodeConstant(v Value) (imageConstant, error) {
	switch v.Kind {
	case KindNull:
		return imageConstant{Kind: imageConstNull}, nil
	case KindBool:
		return imageConstant{Kind: imageConstBool, Bool: v.B}, nil
	case KindInt:
		return imageConstant{Kind: imageConstInt, Int: v.I}, nil
	case KindFloat:
		return imageConstant{Kind: imageConstFloat, Float: v.F}, nil
	case KindObject:
		if v.Obj == nil || v.Obj.Kind != ObjString {
			return imageConstant{}, fmt.Errorf("cannot encode constant of kind %s", v.Kind)
		}
		return imageConstant{Kind: imageConstStr, Str: v.Obj.Chars()}, nil
	default:
		return imageConstant{}, fmt.Errorf("cannot encode constant of kind %s", v.Kind)
	}
}

func decodeConstant(ic imageConstant) (Value, error) {
	switch ic.Kind {
	case imageConstNull:
		return NullValue(), nil
	case imageConstBool:
		return BoolValue(ic.Bool), nil
	case imageConstInt:
		return IntValue(ic.Int), nil
	case imageConstFloat:
		return FloatValue(ic.Float), nil
	case imageConstStr:
		// The decoded object is chunk-owned, outside any VM registry.
		chars := make([]byte, len(ic.Str))
		copy(chars, ic.Str)
		return ObjectValue(NewStringObject(chars)), nil
	default:
		return Value{}, fmt.Errorf("unknown constant tag %d", ic.Kind)
	}
}

// MarshalChunk serializes a chunk to image bytes: the "TVBC" magic
// followed by a canonical CBOR body.
func MarshalChunk(c *Chunk) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("marshal chunk: %w", err)
	}
	img := imageChunk{
		Version: ImageVersion,
		Code:    c.Code,
		Lines:   c.Lines,
	}
	img.Constants = make([]imageConstant, len(c.Constants))
	for i, v := range c.Constants {
		ic, err := encodeConstant(v)
		if err != nil {
			return nil, fmt.Errorf("marshal chunk: constant %d: %w", i, err)
		}
		img.Constants[i] = ic
	}
	body, err := cborEncMode.Marshal(&img)
	if err != nil {
		return nil, fmt.Errorf("marshal chunk: %w", err)
	}
	out := make([]byte, 0, len(ImageMagic)+len(body))
	out = append(out, ImageMagic...)
	out = append(out, body...)
	return out, nil
}

// UnmarshalChunk deserializes a chunk from image bytes, checking the
// magic prefix and format version and validating the result.
func UnmarshalChunk(data []byte) (*Chunk, error) {
	if len(data) < len(ImageMagic) || !bytes.Equal(data[:len(ImageMagic)], ImageMagic) {
		return nil, fmt.Errorf("unmarshal chunk: invalid image magic")
	}
	var img imageChunk
	if err := cbor.Unmarshal(data[len(ImageMagic):], &img); err != nil {
		return nil, fmt.Errorf("unmarshal chunk: %w", err)
	}
	if img.Version > ImageVersion {
		return nil, fmt.Errorf("unmarshal chunk: image version %d is newer than supported version %d", img.Version, ImageVersion)
	}
	c := &Chunk{
		Code:      img.Code,
		Lines:     img.Lines,
		Constants: make([]Value, len(img.Constants)),
	}
	if c.Code == nil {
		c.Code = []byte{}
	}
	if c.Lines == nil {
		c.Lines = []int{}
	}
	for i, ic := range img.Constants {
		v, err := decodeConstant(ic)
		if err != nil {
			return nil, fmt.Errorf("unmarshal chunk: constant %d: %w", i, err)
		}
		c.Constants[i] = v
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("unmarshal chunk: %w", err)
	}
	return c, nil
}

// WriteImageFile writes a chunk image to path.
func WriteImageFile(path string, c *Chunk) error {
	data, err := MarshalChunk(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write image %s: %w", path, err)
	}
	return nil
}

// ReadImageFile reads a chunk image from path.
func ReadImageFile(path string) (*Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	return UnmarshalChunk(data)
}
