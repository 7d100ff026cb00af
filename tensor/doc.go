// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float32 buffers that hold network
// parameters.
//
// # Overview
//
// A RawTensor is a contiguous row-major float32 buffer with a Shape. It is the
// unit a checkpoint stores per parameter.
//
// # Basic Usage
//
//	import "github.com/born-ml/fcnet/tensor"
//
//	func main() {
//	    w, err := tensor.FromFloat32([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(w.Shape()) // (2, 2)
//	}
package tensor
