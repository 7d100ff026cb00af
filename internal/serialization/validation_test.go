package serialization

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationType(t *testing.T, err error) string {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Type
}

func TestValidateTensorOffsets(t *testing.T) {
	tests := []struct {
		name     string
		tensors  []TensorMeta
		dataSize int64
		wantType string
	}{
		{
			name: "contiguous",
			tensors: []TensorMeta{
				{Name: "hidden.0.weight", Offset: 0, Size: 100},
				{Name: "hidden.0.bias", Offset: 100, Size: 200},
				{Name: "output.weight", Offset: 300, Size: 150},
			},
			dataSize: 450,
		},
		{
			name: "unsorted input",
			tensors: []TensorMeta{
				{Name: "b", Offset: 100, Size: 100},
				{Name: "a", Offset: 0, Size: 100},
			},
			dataSize: 200,
		},
		{
			name: "overlap by one byte",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "b", Offset: 99, Size: 100},
			},
			dataSize: 200,
			wantType: "offset_overlap",
		},
		{
			name:     "past the end",
			tensors:  []TensorMeta{{Name: "a", Offset: 100, Size: 200}},
			dataSize: 250,
			wantType: "out_of_bounds",
		},
		{
			name:     "fits exactly",
			tensors:  []TensorMeta{{Name: "a", Offset: 0, Size: 500}},
			dataSize: 500,
		},
		{
			name:     "negative offset",
			tensors:  []TensorMeta{{Name: "a", Offset: -100, Size: 100}},
			dataSize: 500,
			wantType: "negative_offset",
		},
		{
			name:     "negative size",
			tensors:  []TensorMeta{{Name: "a", Offset: 0, Size: -100}},
			dataSize: 500,
			wantType: "negative_offset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets(tt.tensors, tt.dataSize)
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantType, validationType(t, err))
			assert.True(t, IsFormatError(err))
		})
	}
}

func TestValidateTensorOffsetsTooMany(t *testing.T) {
	tensors := make([]TensorMeta, MaxTensorCount+1)
	for i := range tensors {
		tensors[i] = TensorMeta{Name: "t", Offset: int64(i * 4), Size: 4}
	}
	err := ValidateTensorOffsets(tensors, int64(len(tensors)*4))
	assert.Equal(t, "too_many_tensors", validationType(t, err))
}

func TestValidateTensorName(t *testing.T) {
	for _, name := range []string{"hidden.0.weight", "output.bias", "with_numbers_123", "UPPER"} {
		assert.NoError(t, ValidateTensorName(name), name)
	}

	for _, name := range []string{
		"",
		"../../../etc/passwd",
		"hidden/0/weight",
		"hidden\\0\\weight",
		"hidden\x00weight",
		strings.Repeat("a", MaxTensorNameLen+1),
	} {
		err := ValidateTensorName(name)
		require.Error(t, err, "%q", name)
		assert.Contains(t, []string{"invalid_name", "name_too_long"}, validationType(t, err))
	}
}

func TestValidateHeaderLevels(t *testing.T) {
	overlapping := Header{
		ModelType: ModelType,
		Tensors: []TensorMeta{
			{Name: "a", Offset: 0, Size: 100},
			{Name: "b", Offset: 50, Size: 100},
		},
	}
	assert.NoError(t, ValidateHeader(&overlapping, 200, ValidationNormal))
	assert.Equal(t, "offset_overlap", validationType(t, ValidateHeader(&overlapping, 200, ValidationStrict)))

	foreign := Header{ModelType: "other.Model", Tensors: []TensorMeta{{Name: "a", Size: 4}}}
	assert.NoError(t, ValidateHeader(&foreign, 4, ValidationNormal))
	assert.Equal(t, "model_type", validationType(t, ValidateHeader(&foreign, 4, ValidationStrict)))

	hostile := Header{Tensors: []TensorMeta{{Name: "../x", Offset: -1, Size: -1}}}
	assert.NoError(t, ValidateHeader(&hostile, 0, ValidationNone))
	assert.Error(t, ValidateHeader(&hostile, 0, ValidationNormal))
}

func TestValidateStructure(t *testing.T) {
	tests := []struct {
		name    string
		tensors []TensorMeta
		want    error
		wantVE  string
	}{
		{
			name:    "duplicate name",
			tensors: []TensorMeta{{Name: "a", DType: DTypeFloat32, Shape: []int{1}, Size: 4}, {Name: "a", DType: DTypeFloat32, Shape: []int{1}, Offset: 4, Size: 4}},
			want:    ErrDuplicateTensor,
		},
		{
			name:    "float16",
			tensors: []TensorMeta{{Name: "a", DType: "float16", Shape: []int{2}, Size: 4}},
			want:    ErrUnsupportedDType,
		},
		{
			name:    "zero dimension",
			tensors: []TensorMeta{{Name: "a", DType: DTypeFloat32, Shape: []int{0, 2}, Size: 0}},
			wantVE:  "invalid_shape",
		},
		{
			name:    "size disagrees with shape",
			tensors: []TensorMeta{{Name: "a", DType: DTypeFloat32, Shape: []int{2}, Size: 4}},
			wantVE:  "size_mismatch",
		},
		{
			name:    "shape larger than data",
			tensors: []TensorMeta{{Name: "a", DType: DTypeFloat32, Shape: []int{1 << 40, 1 << 40}, Size: 4}},
			want:    ErrOutOfBounds,
		},
		{
			name:    "offset past end",
			tensors: []TensorMeta{{Name: "a", DType: DTypeFloat32, Shape: []int{2}, Offset: 12, Size: 8}},
			want:    ErrOutOfBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateStructure(tt.tensors, 16)
			require.Error(t, err)
			assert.True(t, IsFormatError(err))
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			} else {
				assert.Equal(t, tt.wantVE, validationType(t, err))
			}
		})
	}

	ok := []TensorMeta{
		{Name: "w", DType: DTypeFloat32, Shape: []int{2, 1}, Offset: 0, Size: 8},
		{Name: "b", DType: DTypeFloat32, Shape: []int{2}, Offset: 8, Size: 8},
	}
	assert.NoError(t, validateStructure(ok, 16))
}

func TestParseValidationLevel(t *testing.T) {
	for in, want := range map[string]ValidationLevel{
		"":        ValidationStrict,
		"strict":  ValidationStrict,
		" Normal": ValidationNormal,
		"NONE":    ValidationNone,
	} {
		got, err := ParseValidationLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseValidationLevel("paranoid")
	assert.Error(t, err)
	assert.Equal(t, "normal", ValidationNormal.String())
	assert.Equal(t, "unknown", ValidationLevel(9).String())
}

func TestValidationErrorMessages(t *testing.T) {
	assert.Equal(t,
		`out_of_bounds: tensor "output.bias": offset 100 + size 200 > data_size 250`,
		(&ValidationError{Type: "out_of_bounds", Tensor: "output.bias", Details: "offset 100 + size 200 > data_size 250"}).Error())
	assert.Equal(t,
		`offset_overlap: tensors "a" and "b": regions [0-100] and [50-150] overlap`,
		(&ValidationError{Type: "offset_overlap", Tensor: "a", Tensor2: "b", Details: "regions [0-100] and [50-150] overlap"}).Error())
	assert.Equal(t,
		"too_many_tensors: got 100001, max 100000",
		(&ValidationError{Type: "too_many_tensors", Details: "got 100001, max 100000"}).Error())
}

func FuzzValidateTensorName(f *testing.F) {
	f.Add("hidden.0.weight")
	f.Add("../etc/passwd")
	f.Add("")
	f.Fuzz(func(t *testing.T, name string) {
		_ = ValidateTensorName(name)
	})
}
