package exc

const (
	CodeUnknownFatal                   = "R0000"
	CodeFileNotFound                   = "R0001"
	CodeUnsupportedFileSystemOperation = "R0002"
	CodePermissionDenied               = "R0003"
	CodeUnsupportedFileFormat          = "R0004"
	// CodeOutputConflict marks an input whose sidecar files are already
	// written or read by another input of the same run.
	CodeOutputConflict                 = "R0005"
)

// Lexical diagnostics. Never fatal.
const (
	CodeInvalidCharacter   = "L0001"
	CodeUnterminatedString = "L0002"
	CodeInvalidKeyword     = "L0003"
)

// Syntax diagnostics. Never fatal.
const (
	CodeMissingSeparator = "S0001"
	CodeMissingClose     = "S0002"
	CodeUnexpectedToken  = "S0003"
)

// Semantic diagnostics, leveled A/B/C. Never fatal.
const (
	CodeInvalidDecimal   = "E0001"
	CodeEmptyKey         = "E0002"
	CodeInvalidInteger   = "E0003"
	CodeReservedKey      = "E0004"
	CodeInconsistentList = "E0006"
	CodeReservedString   = "E0007"
)

// Internal consistency failures. Always fatal.
const (
	CodeTokenMismatch  = "I0001"
	CodeMalformedToken = "I0002"
	CodeMalformedWire  = "I0003"
)

const (
	CodeEOF = "_EOF_"
)

var (
	defaultNonFatal = map[string]bool{
		CodeInvalidCharacter:   true,
		CodeUnterminatedString: true,
		CodeInvalidKeyword:     true,
		CodeMissingSeparator:   true,
		CodeMissingClose:       true,
		CodeUnexpectedToken:    true,
		CodeInvalidDecimal:     true,
		CodeEmptyKey:           true,
		CodeInvalidInteger:     true,
		CodeReservedKey:        true,
		CodeInconsistentList:   true,
		CodeReservedString:     true,
	}
)

// IsFatal reports whether the code is fatal under the default policy.
func IsFatal(code string) bool {
	return !defaultNonFatal[code]
}
