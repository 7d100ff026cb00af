// Package serialization implements the .fcnt checkpoint format.
//
// A .fcnt file stores a network Descriptor together with the network's
// parameter snapshot:
//
//	Format Structure:
//	  0x00 [4 bytes: Magic "FCNT"]
//	  0x04 [4 bytes: Version (uint32 LE)]
//	  0x08 [4 bytes: Flags (uint32 LE)]
//	  0x0C [4 bytes: Reserved]
//	  0x10 [8 bytes: JSON header size (uint64 LE)]
//	  0x18 [8 bytes: Data section size (uint64 LE)]
//	  0x20 [32 bytes: SHA-256 of the data section]
//	  0x40 [JSON header: checkpoint id, descriptor, tensor table, metadata]
//	       [zero padding to a 64-byte boundary]
//	       [Data section: float32 little-endian, tensors back to back]
//
// Encoding is deterministic: tensors are written in snapshot order, metadata
// keys are sorted and no timestamps are recorded, so encoding the same
// descriptor and snapshot twice yields identical bytes. The checkpoint id is a
// name-based UUID derived from the descriptor and the data checksum.
//
// Example usage:
//
//	data, err := serialization.Marshal(desc, snapshot, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ckpt, err := serialization.Decode(bytes.NewReader(data), serialization.ReaderOptions{})
package serialization
