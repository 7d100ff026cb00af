package serialization

import (
	"github.com/born-ml/fcnet/internal/nn"
)

// Format constants.
const (
	MagicBytes      = "FCNT"
	FormatVersion   = 1
	FixedHeaderSize = 64 // 0x40 bytes
	HeaderAlignment = 64 // Tensor data starts on a 64-byte boundary
	ChecksumSize    = 32 // SHA-256 checksum size
	ChecksumOffset  = 0x20
)

// DTypeFloat32 is the only dtype accepted for parameter tensors.
const DTypeFloat32 = "float32"

// ModelType identifies the network layout stored in the header.
const ModelType = "fcnet.Network"

// Flags for the .fcnt format.
const (
	FlagHasMetadata uint32 = 1 << 0 // bit 0: custom metadata included

	knownFlags = FlagHasMetadata
)

// Header represents the JSON header of a .fcnt file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	CheckpointID  string            `json:"checkpoint_id"`
	ModelType     string            `json:"model_type"`
	Descriptor    DescriptorMeta    `json:"descriptor"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// DescriptorMeta is the wire form of nn.Descriptor.
//
// Fields are pointers so that a header missing a field can be told apart from
// one carrying a zero value.
type DescriptorMeta struct {
	InputSize   *uint32  `json:"input_size"`
	OutputSize  *uint32  `json:"output_size"`
	HiddenSizes []uint32 `json:"hidden_sizes"`
	DropoutRate *float64 `json:"dropout_rate"`
}

// TensorMeta describes a tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`   // Parameter name (e.g., "hidden.0.weight")
	DType  string `json:"dtype"`  // Always "float32" for files written by this package
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Bytes from the start of the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// Checkpoint is a decoded .fcnt file.
type Checkpoint struct {
	Header     Header
	Descriptor nn.Descriptor
	Snapshot   *nn.Snapshot
	Checksum   [ChecksumSize]byte
}

func descriptorMeta(d nn.Descriptor) DescriptorMeta {
	in, out, rate := d.InputSize, d.OutputSize, d.DropoutRate
	hidden := d.HiddenSizes
	if hidden == nil {
		hidden = []uint32{}
	}
	return DescriptorMeta{
		InputSize:   &in,
		OutputSize:  &out,
		HiddenSizes: hidden,
		DropoutRate: &rate,
	}
}

// descriptor converts the wire form back, reporting the first missing field.
func (m DescriptorMeta) descriptor() (nn.Descriptor, error) {
	switch {
	case m.InputSize == nil:
		return nn.Descriptor{}, missingField("descriptor.input_size")
	case m.OutputSize == nil:
		return nn.Descriptor{}, missingField("descriptor.output_size")
	case m.HiddenSizes == nil:
		return nn.Descriptor{}, missingField("descriptor.hidden_sizes")
	case m.DropoutRate == nil:
		return nn.Descriptor{}, missingField("descriptor.dropout_rate")
	}
	return nn.Descriptor{
		InputSize:   *m.InputSize,
		OutputSize:  *m.OutputSize,
		HiddenSizes: append([]uint32(nil), m.HiddenSizes...),
		DropoutRate: *m.DropoutRate,
	}, nil
}

func alignedDataOffset(headerSize uint64) int64 {
	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	currentPos := int64(FixedHeaderSize) + int64(headerSize)
	padding := (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
	return currentPos + padding
}
