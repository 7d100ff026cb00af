package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/born-ml/fcnet/internal/nn"
)

// Marshal encodes a descriptor and parameter snapshot into a complete .fcnt artifact.
//
// Tensors are laid out in snapshot order. Any NaN or ±Inf value fails with
// *NonFiniteError. Marshal does no I/O, so every error it returns describes
// a value that cannot be encoded.
func Marshal(desc nn.Descriptor, snapshot *nn.Snapshot, metadata map[string]string) ([]byte, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("nil snapshot")
	}

	header := Header{
		FormatVersion: FormatVersion,
		ModelType:     ModelType,
		Descriptor:    descriptorMeta(desc),
		Tensors:       make([]TensorMeta, 0, snapshot.Len()),
		Metadata:      metadata,
	}

	// Calculate tensor offsets and collect tensor data
	var currentOffset int64
	var tensorData bytes.Buffer
	for pair := snapshot.Oldest(); pair != nil; pair = pair.Next() {
		name, raw := pair.Key, pair.Value
		if err := ValidateTensorName(name); err != nil {
			return nil, err
		}

		values := raw.AsFloat32()
		if i := raw.FirstNonFinite(); i >= 0 {
			return nil, &NonFiniteError{Tensor: name, Index: i, Value: values[i]}
		}
		size := int64(raw.ByteSize())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  DTypeFloat32,
			Shape:  []int(raw.Shape().Clone()),
			Offset: currentOffset,
			Size:   size,
		})
		currentOffset += size

		buf := make([]byte, size)
		for i, v := range values {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
		}
		tensorData.Write(buf)
	}

	checksum := ComputeChecksum(tensorData.Bytes())
	id, err := CheckpointID(header.Descriptor, checksum)
	if err != nil {
		return nil, fmt.Errorf("failed to derive checkpoint id: %w", err)
	}
	header.CheckpointID = id.String()

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal header: %w", err)
	}

	headerSize := uint64(len(headerJSON))
	dataSize := uint64(tensorData.Len())
	dataOffset := alignedDataOffset(headerSize)

	out := make([]byte, 0, dataOffset+int64(dataSize)) //nolint:gosec // G115: sizes come from in-memory buffers

	fixedHeader := make([]byte, FixedHeaderSize)

	// 0x00-0x03: Magic bytes
	copy(fixedHeader[0:4], MagicBytes)

	// 0x04-0x07: Version
	binary.LittleEndian.PutUint32(fixedHeader[4:8], uint32(FormatVersion))

	// 0x08-0x0B: Flags
	flags := uint32(0)
	if len(metadata) > 0 {
		flags |= FlagHasMetadata
	}
	binary.LittleEndian.PutUint32(fixedHeader[8:12], flags)

	// 0x0C-0x0F: Reserved (0)

	// 0x10-0x17: Header size
	binary.LittleEndian.PutUint64(fixedHeader[16:24], headerSize)

	// 0x18-0x1F: Data size
	binary.LittleEndian.PutUint64(fixedHeader[24:32], dataSize)

	// 0x20-0x3F: SHA-256 checksum
	copy(fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	out = append(out, fixedHeader...)
	out = append(out, headerJSON...)
	out = append(out, make([]byte, dataOffset-int64(len(out)))...)
	out = append(out, tensorData.Bytes()...)

	return out, nil
}

// Writer writes a .fcnt file.
type Writer struct {
	file   *os.File
	closed bool
}

// NewWriter creates (or truncates) the file at path.
func NewWriter(path string) (*Writer, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return &Writer{
		file:   file,
		closed: false,
	}, nil
}

// Write writes an already marshaled artifact.
func (w *Writer) Write(data []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("writer is closed")
	}
	return w.file.Write(data)
}

// Close closes the writer and the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}
