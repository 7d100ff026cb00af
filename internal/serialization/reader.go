package serialization

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/born-ml/fcnet/internal/nn"
	"github.com/born-ml/fcnet/internal/tensor"
)

// ReaderOptions configures decoding.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum and id validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// ReadFile opens path, decodes it and closes it again on every path.
func ReadFile(path string, opts ReaderOptions) (ckpt *Checkpoint, err error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			ckpt, err = nil, fmt.Errorf("failed to close file: %w", closeErr)
		}
	}()

	return Decode(bufio.NewReader(file), opts)
}

// Decode reads one .fcnt artifact from r.
//
// The stream is read sequentially; no seeking is required. A stream that ends
// early fails with ErrTruncated. Every structural problem yields an error for
// which IsFormatError reports true; any other error comes from r itself.
//
//nolint:gocognit,gocyclo,cyclop // Complex reader logic is unavoidable for binary format
func Decode(r io.Reader, opts ReaderOptions) (*Checkpoint, error) {
	fixedHeader, err := readN(r, FixedHeaderSize, "fixed header")
	if err != nil {
		return nil, err
	}

	// 0x00-0x03: Magic bytes
	if string(fixedHeader[0:4]) != MagicBytes {
		return nil, fmt.Errorf("%w: got %q, expected %q", ErrInvalidMagic, fixedHeader[0:4], MagicBytes)
	}

	// 0x04-0x07: Version
	version := binary.LittleEndian.Uint32(fixedHeader[4:8])
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	// 0x08-0x0B: Flags, 0x0C-0x0F: Reserved
	flags := binary.LittleEndian.Uint32(fixedHeader[8:12])
	reserved := binary.LittleEndian.Uint32(fixedHeader[12:16])

	// 0x10-0x17: Header size
	headerSize := binary.LittleEndian.Uint64(fixedHeader[16:24])
	if headerSize > MaxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	// 0x18-0x1F: Data size
	dataSize := binary.LittleEndian.Uint64(fixedHeader[24:32])
	if dataSize > math.MaxInt64 {
		return nil, fmt.Errorf("%w: data size %d", ErrMalformedHeader, dataSize)
	}

	// 0x20-0x3F: SHA-256 checksum
	var stored [ChecksumSize]byte
	copy(stored[:], fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerJSON, err := readN(r, int64(headerSize), "header")
	if err != nil {
		return nil, err
	}

	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedHeader, err)
	}
	if header.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: header format_version %d, fixed header %d",
			ErrMalformedHeader, header.FormatVersion, version)
	}
	if header.Tensors == nil {
		return nil, missingField("tensors")
	}

	desc, err := header.Descriptor.descriptor()
	if err != nil {
		return nil, err
	}

	dataOffset := alignedDataOffset(headerSize)
	if _, err := readN(r, dataOffset-int64(FixedHeaderSize)-int64(headerSize), "padding"); err != nil { //nolint:gosec // G115: bounded by MaxHeaderSize
		return nil, err
	}

	data, err := readN(r, int64(dataSize), "tensor data")
	if err != nil {
		return nil, err
	}

	computed := ComputeChecksum(data)
	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(computed, stored); err != nil {
			return nil, err
		}
		id, err := CheckpointID(header.Descriptor, computed)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedHeader, err)
		}
		if id.String() != header.CheckpointID {
			return nil, fmt.Errorf("%w: stored %q, computed %q", ErrIdentityMismatch, header.CheckpointID, id)
		}
	}

	if err := validateStructure(header.Tensors, int64(dataSize)); err != nil {
		return nil, err
	}
	if err := ValidateHeader(&header, int64(dataSize), opts.ValidationLevel); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if opts.ValidationLevel == ValidationStrict {
		if err := validateFlags(flags, reserved, &header); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}

	snapshot := nn.NewSnapshot()
	for _, meta := range header.Tensors {
		raw, err := decodeTensor(meta, data[meta.Offset:meta.Offset+meta.Size])
		if err != nil {
			return nil, err
		}
		snapshot.Set(meta.Name, raw)
	}

	return &Checkpoint{
		Header:     header,
		Descriptor: desc,
		Snapshot:   snapshot,
		Checksum:   computed,
	}, nil
}

func decodeTensor(meta TensorMeta, data []byte) (*tensor.RawTensor, error) {
	raw, err := tensor.NewRaw(tensor.Shape(meta.Shape))
	if err != nil {
		return nil, &ValidationError{Type: "invalid_shape", Tensor: meta.Name, Details: err.Error()}
	}

	values := raw.AsFloat32()
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	if i := raw.FirstNonFinite(); i >= 0 {
		return nil, &NonFiniteError{Tensor: meta.Name, Index: i, Value: values[i]}
	}
	return raw, nil
}

// readN reads exactly n bytes. The buffer grows with the data actually read,
// so a corrupt size field cannot force a large up-front allocation.
func readN(r io.Reader, n int64, what string) ([]byte, error) {
	var buf bytes.Buffer
	copied, err := io.CopyN(&buf, r, n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: reading %s: got %d of %d bytes", ErrTruncated, what, copied, n)
		}
		return nil, fmt.Errorf("failed to read %s: %w", what, err)
	}
	return buf.Bytes(), nil
}
