package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer.
const (
	ErrCodeInternal       ErrorCode = "COMMON_001"
	ErrCodeBadRequest     ErrorCode = "COMMON_002"
	ErrCodeNotFound       ErrorCode = "COMMON_003"
	ErrCodeValidation     ErrorCode = "COMMON_004"
	ErrCodeSerialization  ErrorCode = "COMMON_005"
	ErrCodeCacheError     ErrorCode = "COMMON_006"
	ErrCodeNotImplemented ErrorCode = "COMMON_007"
)

// Dataset module error codes.
const (
	ErrCodeMetadataFileNotFound ErrorCode = "DS_001"
	ErrCodeMetadataParseFailed  ErrorCode = "DS_002"
	ErrCodeDatasetEmpty         ErrorCode = "DS_003"
	ErrCodeSampleNotFound       ErrorCode = "DS_004"
	ErrCodeSampleSkipped        ErrorCode = "DS_005"
)

// Split module error codes.
const (
	ErrCodeSplitTypeUnsupported ErrorCode = "SPL_001"
	ErrCodeSplitProbsInvalid    ErrorCode = "SPL_002"
	ErrCodeMultiProductSplit    ErrorCode = "SPL_003"
	ErrCodeSplitKeyUnassigned   ErrorCode = "SPL_004"
)

// Chemistry module error codes.
const (
	ErrCodeInvalidSMILES            ErrorCode = "CHEM_001"
	ErrCodeSMILESParseFailed        ErrorCode = "CHEM_002"
	ErrCodeRandomizationUnsupported ErrorCode = "CHEM_003"
	ErrCodeInvalidReactionString    ErrorCode = "CHEM_004"
)

// Side-cache error codes.
const (
	ErrCodeFeatureMissing     ErrorCode = "CACHE_001"
	ErrCodeFeatureCorrupt     ErrorCode = "CACHE_002"
	ErrCodeCacheUnavailable   ErrorCode = "CACHE_003"
	ErrCodeAnnotationMismatch ErrorCode = "CACHE_004"
)

// Aliases kept so call sites read naturally.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:       "internal error",
	ErrCodeBadRequest:     "bad request",
	ErrCodeNotFound:       "resource not found",
	ErrCodeValidation:     "validation failed",
	ErrCodeSerialization:  "serialization failed",
	ErrCodeCacheError:     "cache error",
	ErrCodeNotImplemented: "not implemented",

	ErrCodeMetadataFileNotFound: "metadata file not found",
	ErrCodeMetadataParseFailed:  "failed to parse metadata file",
	ErrCodeDatasetEmpty:         "dataset is empty after filtering",
	ErrCodeSampleNotFound:       "sample not found",
	ErrCodeSampleSkipped:        "sample skipped",

	ErrCodeSplitTypeUnsupported: "split type not supported",
	ErrCodeSplitProbsInvalid:    "split proportions invalid",
	ErrCodeMultiProductSplit:    "product split not implemented for multi-product reactions",
	ErrCodeSplitKeyUnassigned:   "entity key absent from split assignment",

	ErrCodeInvalidSMILES:            "invalid SMILES format",
	ErrCodeSMILESParseFailed:        "failed to parse SMILES",
	ErrCodeRandomizationUnsupported: "SMILES randomization unsupported for structure",
	ErrCodeInvalidReactionString:    "invalid reaction string",

	ErrCodeFeatureMissing:     "precomputed feature not found",
	ErrCodeFeatureCorrupt:     "precomputed feature blob corrupt",
	ErrCodeCacheUnavailable:   "side cache unavailable",
	ErrCodeAnnotationMismatch: "residue annotation length mismatch",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ModuleForCode returns the module prefix of an ErrorCode ("DS", "SPL", ...).
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
