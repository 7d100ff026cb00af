package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/fcnet/internal/nn"
)

func smallDescriptor() nn.Descriptor {
	return nn.Descriptor{InputSize: 4, OutputSize: 2, HiddenSizes: []uint32{3}, DropoutRate: 0.25}
}

func smallSnapshot(t *testing.T) *nn.Snapshot {
	t.Helper()
	n, err := nn.Build(smallDescriptor(), nn.WithSeed(7))
	require.NoError(t, err)
	return n.NamedParameters()
}

func marshalSmall(t *testing.T) []byte {
	t.Helper()
	data, err := Marshal(smallDescriptor(), smallSnapshot(t), nil)
	require.NoError(t, err)
	return data
}

// split parses an artifact without any validation.
func split(t *testing.T, artifact []byte) (Header, []byte) {
	t.Helper()
	headerSize := binary.LittleEndian.Uint64(artifact[16:24])
	dataSize := binary.LittleEndian.Uint64(artifact[24:32])

	var h Header
	require.NoError(t, json.Unmarshal(artifact[FixedHeaderSize:FixedHeaderSize+int(headerSize)], &h))
	start := alignedDataOffset(headerSize)
	return h, artifact[start : start+int64(dataSize)]
}

// assemble writes a fresh artifact with a correct checksum for data. The
// header is written as given, including its checkpoint id.
func assemble(t *testing.T, h Header, data []byte) []byte {
	t.Helper()
	headerJSON, err := json.Marshal(h)
	require.NoError(t, err)

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed, MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	sum := ComputeChecksum(data)
	copy(fixed[ChecksumOffset:], sum[:])

	out := append(fixed, headerJSON...)
	out = append(out, make([]byte, alignedDataOffset(uint64(len(headerJSON)))-int64(len(out)))...)
	return append(out, data...)
}

func reidentify(t *testing.T, h *Header, data []byte) {
	t.Helper()
	id, err := CheckpointID(h.Descriptor, ComputeChecksum(data))
	require.NoError(t, err)
	h.CheckpointID = id.String()
}

func TestMarshalDecodeRoundTrip(t *testing.T) {
	snapshot := smallSnapshot(t)
	meta := map[string]string{"dataset": "synthetic", "epochs": "3"}

	artifact, err := Marshal(smallDescriptor(), snapshot, meta)
	require.NoError(t, err)
	assert.Equal(t, FlagHasMetadata, binary.LittleEndian.Uint32(artifact[8:12]))

	ckpt, err := Decode(bytes.NewReader(artifact), ReaderOptions{})
	require.NoError(t, err)

	if diff := cmp.Diff(smallDescriptor(), ckpt.Descriptor); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(meta, ckpt.Header.Metadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, ModelType, ckpt.Header.ModelType)
	assert.NotEmpty(t, ckpt.Header.CheckpointID)

	require.Equal(t, snapshot.Len(), ckpt.Snapshot.Len())
	got := ckpt.Snapshot.Oldest()
	for want := snapshot.Oldest(); want != nil; want = want.Next() {
		assert.Equal(t, want.Key, got.Key)
		assert.True(t, want.Value.BitEqual(got.Value), "tensor %s", want.Key)
		got = got.Next()
	}
}

func TestMarshalLayout(t *testing.T) {
	artifact := marshalSmall(t)
	h, data := split(t, artifact)

	assert.Equal(t, MagicBytes, string(artifact[:4]))
	assert.Zero(t, binary.LittleEndian.Uint32(artifact[8:12]))
	assert.Zero(t, alignedDataOffset(binary.LittleEndian.Uint64(artifact[16:24]))%HeaderAlignment)

	names := make([]string, 0, len(h.Tensors))
	var next int64
	for _, tm := range h.Tensors {
		names = append(names, tm.Name)
		assert.Equal(t, next, tm.Offset, tm.Name)
		assert.Equal(t, DTypeFloat32, tm.DType)
		next += tm.Size
	}
	assert.Equal(t, []string{"hidden.0.weight", "hidden.0.bias", "output.weight", "output.bias"}, names)
	assert.Equal(t, []int{3, 4}, h.Tensors[0].Shape)
	assert.Equal(t, int64(len(data)), next)
}

func TestMarshalDeterministic(t *testing.T) {
	snapshot := smallSnapshot(t)
	meta := map[string]string{"b": "2", "a": "1", "c": "3"}

	first, err := Marshal(smallDescriptor(), snapshot, meta)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Marshal(smallDescriptor(), snapshot, meta)
		require.NoError(t, err)
		require.True(t, bytes.Equal(first, again), "marshal %d differs", i)
	}
}

func TestMarshalRejectsNonFinite(t *testing.T) {
	for _, v := range []float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))} {
		snapshot := smallSnapshot(t)
		bias, _ := snapshot.Get("output.bias")
		bias.AsFloat32()[1] = v

		_, err := Marshal(smallDescriptor(), snapshot, nil)
		var nf *NonFiniteError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "output.bias", nf.Tensor)
		assert.Equal(t, 1, nf.Index)
		assert.ErrorIs(t, err, ErrNonFinite)
	}
}

func TestMarshalNilSnapshot(t *testing.T) {
	_, err := Marshal(smallDescriptor(), nil, nil)
	assert.Error(t, err)
}

func TestDecodeTruncatedAtEveryOffset(t *testing.T) {
	artifact := marshalSmall(t)
	for n := 0; n < len(artifact); n++ {
		_, err := Decode(bytes.NewReader(artifact[:n]), ReaderOptions{})
		require.ErrorIs(t, err, ErrTruncated, "prefix of %d bytes", n)
		require.True(t, IsFormatError(err))
	}
}

func TestDecodeCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(t *testing.T, artifact []byte) []byte
		want    error
	}{
		{
			name: "magic",
			corrupt: func(_ *testing.T, a []byte) []byte {
				a[0] = 'X'
				return a
			},
			want: ErrInvalidMagic,
		},
		{
			name: "version",
			corrupt: func(_ *testing.T, a []byte) []byte {
				binary.LittleEndian.PutUint32(a[4:8], FormatVersion+1)
				return a
			},
			want: ErrUnsupportedVersion,
		},
		{
			name: "header size",
			corrupt: func(_ *testing.T, a []byte) []byte {
				binary.LittleEndian.PutUint64(a[16:24], MaxHeaderSize+1)
				return a
			},
			want: ErrHeaderTooLarge,
		},
		{
			name: "header json",
			corrupt: func(_ *testing.T, a []byte) []byte {
				a[FixedHeaderSize] = '['
				return a
			},
			want: ErrMalformedHeader,
		},
		{
			name: "data byte",
			corrupt: func(_ *testing.T, a []byte) []byte {
				a[alignedDataOffset(binary.LittleEndian.Uint64(a[16:24]))] ^= 0x01
				return a
			},
			want: ErrChecksumMismatch,
		},
		{
			name: "descriptor edited",
			corrupt: func(t *testing.T, a []byte) []byte {
				h, data := split(t, a)
				rate := 0.75
				h.Descriptor.DropoutRate = &rate
				return assemble(t, h, data)
			},
			want: ErrIdentityMismatch,
		},
		{
			name: "descriptor field missing",
			corrupt: func(t *testing.T, a []byte) []byte {
				h, data := split(t, a)
				h.Descriptor.OutputSize = nil
				return assemble(t, h, data)
			},
			want: ErrMissingField,
		},
		{
			name: "tensor list missing",
			corrupt: func(t *testing.T, a []byte) []byte {
				h, data := split(t, a)
				h.Tensors = nil
				reidentify(t, &h, data)
				return assemble(t, h, data)
			},
			want: ErrMissingField,
		},
		{
			name: "nan in data",
			corrupt: func(t *testing.T, a []byte) []byte {
				h, data := split(t, a)
				data = append([]byte(nil), data...)
				binary.LittleEndian.PutUint32(data[h.Tensors[1].Offset:], math.Float32bits(float32(math.NaN())))
				reidentify(t, &h, data)
				return assemble(t, h, data)
			},
			want: ErrNonFinite,
		},
		{
			name: "unsupported dtype",
			corrupt: func(t *testing.T, a []byte) []byte {
				h, data := split(t, a)
				h.Tensors[0].DType = "float64"
				reidentify(t, &h, data)
				return assemble(t, h, data)
			},
			want: ErrUnsupportedDType,
		},
		{
			name: "tensor past data section",
			corrupt: func(t *testing.T, a []byte) []byte {
				h, data := split(t, a)
				h.Tensors[3].Offset += 4
				reidentify(t, &h, data)
				return assemble(t, h, data)
			},
			want: ErrOutOfBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact := tt.corrupt(t, marshalSmall(t))
			_, err := Decode(bytes.NewReader(artifact), ReaderOptions{})
			require.ErrorIs(t, err, tt.want)
			assert.True(t, IsFormatError(err))
		})
	}
}

func TestDecodeStrictFlags(t *testing.T) {
	withMeta, err := Marshal(smallDescriptor(), smallSnapshot(t), map[string]string{"run": "a1"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		artifact []byte
		flags    uint32
		reserved uint32
	}{
		{"unknown flag bit", marshalSmall(t), 1 << 5, 0},
		{"reserved word set", marshalSmall(t), 0, 7},
		{"metadata flag without metadata", marshalSmall(t), FlagHasMetadata, 0},
		{"metadata without flag", withMeta, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact := append([]byte(nil), tt.artifact...)
			binary.LittleEndian.PutUint32(artifact[8:12], tt.flags)
			binary.LittleEndian.PutUint32(artifact[12:16], tt.reserved)

			_, err := Decode(bytes.NewReader(artifact), ReaderOptions{ValidationLevel: ValidationStrict})
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, []string{"flags", "reserved"}, ve.Type)
			assert.True(t, IsFormatError(err))

			_, err = Decode(bytes.NewReader(artifact), ReaderOptions{ValidationLevel: ValidationNormal})
			assert.NoError(t, err)
		})
	}
}

func TestDecodeSkipChecksum(t *testing.T) {
	artifact := marshalSmall(t)
	artifact[alignedDataOffset(binary.LittleEndian.Uint64(artifact[16:24]))] ^= 0x01

	_, err := Decode(bytes.NewReader(artifact), ReaderOptions{SkipChecksumValidation: true})
	assert.NoError(t, err)
}

func TestDecodeReaderFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	_, err := Decode(iotest.ErrReader(boom), ReaderOptions{})
	require.ErrorIs(t, err, boom)
	assert.False(t, IsFormatError(err))
}

func TestWriterAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.fcnt")
	artifact := marshalSmall(t)

	w, err := NewWriter(path)
	require.NoError(t, err)
	_, err = w.Write(artifact)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	_, err = w.Write(artifact)
	assert.Error(t, err)

	ckpt, err := ReadFile(path, ReaderOptions{ValidationLevel: ValidationStrict})
	require.NoError(t, err)
	assert.Equal(t, 4, ckpt.Snapshot.Len())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.fcnt"), ReaderOptions{})
	require.Error(t, err)
	assert.False(t, IsFormatError(err))
}
