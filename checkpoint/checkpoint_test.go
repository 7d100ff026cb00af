// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package checkpoint_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/fcnet/checkpoint"
	"github.com/born-ml/fcnet/nn"
)

// TestSaveLoad exercises the public save/load path end to end.
func TestSaveLoad(t *testing.T) {
	desc := nn.Descriptor{InputSize: 784, OutputSize: 10, HiddenSizes: []uint32{32, 16}, DropoutRate: 0.5}
	model, err := nn.Build(desc, nn.WithSeed(3))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mnist.fcnt")
	require.NoError(t, checkpoint.Save(model, path))

	restored, err := checkpoint.Load(path, nn.NewFactory())
	require.NoError(t, err)

	want, got := model.NamedParameters(), restored.NamedParameters()
	for pair := want.Oldest(); pair != nil; pair = pair.Next() {
		loaded, ok := got.Get(pair.Key)
		require.True(t, ok, pair.Key)
		assert.True(t, pair.Value.BitEqual(loaded), pair.Key)
	}

	changed := desc.Clone()
	changed.HiddenSizes = []uint32{32, 8}
	_, err = checkpoint.Load(path, nn.NewFactory(), checkpoint.WithDescriptor(changed))
	var mismatch *checkpoint.ShapeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []string{"hidden.1.weight", "hidden.1.bias", "output.weight"}, mismatch.Names())
}
