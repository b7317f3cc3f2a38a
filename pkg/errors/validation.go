package errors

import (
	"strings"
	"unicode"
)

// ValidateProgramID validates a program identifier supplied by a user
// or an API client. It rejects IDs that could not have come from a
// legitimate dataset or that would break the canonical edge key format.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters or null bytes
//   - No "__" sequence (reserved as the edge key delimiter)
//   - Maximum length of 128 characters
func ValidateProgramID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidProgram, "program ID cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidProgram, "program ID too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidProgram, "program ID contains control characters")
		}
	}

	if strings.Contains(id, "__") {
		return New(ErrCodeInvalidProgram, "program ID cannot contain %q (reserved edge key delimiter)", "__")
	}

	return nil
}

// ValidateDatasetName validates a dataset name for safety. Dataset
// names become file names in the file store and collection names in
// MongoDB, so path separators and dots are rejected.
func ValidateDatasetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDataset, "dataset name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidDataset, "dataset name too long (max 64 characters)")
	}

	if strings.ContainsAny(name, "/\\.") {
		return New(ErrCodeInvalidDataset, "dataset name cannot contain path separators or dots")
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidDataset, "dataset name contains invalid characters")
		}
	}

	return nil
}

// ValidateMaxHops validates the hop bound of a layout request.
// The bound is kept small because subgraph enumeration is exponential
// in it; MaxHopBound is generous compared to the typical bound of 6.
func ValidateMaxHops(maxHops int) error {
	if maxHops < 0 {
		return New(ErrCodeInvalidRequest, "max hops cannot be negative")
	}
	if maxHops > MaxHopBound {
		return New(ErrCodeInvalidRequest, "max hops too large (max %d)", MaxHopBound)
	}
	return nil
}

// MaxHopBound is the largest accepted hop bound for a layout request.
const MaxHopBound = 10
