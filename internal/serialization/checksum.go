package serialization

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/google/uuid"
)

// checkpointNamespace scopes the name-based checkpoint ids of .fcnt files.
var checkpointNamespace = uuid.MustParse("6f1c2a4e-8d3b-5e7f-9a10-2b4c6d8e0f12")

// ComputeChecksum computes SHA-256 checksum of data.
func ComputeChecksum(data []byte) [ChecksumSize]byte {
	return sha256.Sum256(data)
}

// ValidateChecksum compares computed checksum against stored checksum.
// Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(computed, stored [ChecksumSize]byte) error {
	if computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}

// CheckpointID derives the deterministic id of a checkpoint from its
// descriptor and data checksum. Equal contents always produce equal ids.
func CheckpointID(desc DescriptorMeta, checksum [ChecksumSize]byte) (uuid.UUID, error) {
	descJSON, err := json.Marshal(desc)
	if err != nil {
		return uuid.Nil, err
	}
	name := append(checksum[:], descJSON...)
	return uuid.NewSHA1(checkpointNamespace, name), nil
}
