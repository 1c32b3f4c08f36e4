package errors

// Error codes for the jmmc compiler.
//
// Error code ranges:
// E0100-E0199: Frontend errors (parsing, name resolution)
// E0700-E0799: Backend errors (lowering, register allocation, emission)
// E0800-E0899: Verification errors on emitted code

const (
	// E0100: Source text does not match the grammar
	ErrorParse = "E0100"

	// E0101: A name could not be resolved during annotation
	ErrorUnresolvedSymbol = "E0101"

	// E0700: The backend met an instruction or operand shape it cannot lower or emit
	ErrorUnsupported = "E0700"

	// E0701: Register allocation needs more locals than the configured cap
	ErrorInsufficientRegisters = "E0701"

	// E0702: A type could not be mapped to a JVM descriptor
	ErrorMalformedType = "E0702"

	// E0703: Input violates a backend precondition (unknown variable, missing annotation)
	ErrorPrecondition = "E0703"

	// E0800: Emitted code fails the stack or locals check
	ErrorVerification = "E0800"
)

// ErrorDescriptions maps error codes to short descriptions
var ErrorDescriptions = map[string]string{
	ErrorParse:                 "Syntax error",
	ErrorUnresolvedSymbol:      "Unresolved symbol",
	ErrorUnsupported:           "Unsupported construct",
	ErrorInsufficientRegisters: "Insufficient registers",
	ErrorMalformedType:         "Malformed type",
	ErrorPrecondition:          "Precondition violation",
	ErrorVerification:          "Stack or locals verification failed",
}
