// Package errors provides standardized error handling patterns for SemDecode components.
//
// # Overview
//
// The package implements a three-class error classification: Transient (temporary,
// the upstream I/O layer may retry), Invalid (bad input or bad payload, never
// retry), and Fatal (unrecoverable, stop the stage). Decoding itself is a pure
// function of its input, so no error produced by a codec is ever transient.
//
// # Codec Failures
//
// Codecs report two typed failures:
//
//   - *DecodeError: the payload does not conform to the codec's format. It carries
//     the format name, the byte offset when the codec can locate the problem (or -1),
//     a short reason, and the underlying cause. errors.Is(err, ErrDecodeFailed) and
//     IsInvalid(err) both hold.
//   - *BuildError: a codec configuration cannot produce a decoder (for example an
//     unparsable message key). errors.Is(err, ErrInvalidConfig) and IsFatal(err) hold.
//
// Decode failures are returned to the calling pipeline stage, which decides whether
// to drop, dead-letter or halt:
//
//	events, err := deserializer.Parse(payload, ns)
//	if err != nil {
//	    var de *errors.DecodeError
//	    if stderrors.As(err, &de) {
//	        logger.Debug("dropping payload", "format", de.Format, "offset", de.Offset)
//	    }
//	    return
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Component", "Method", "action")  // For retryable errors
//	errors.WrapInvalid(err, "Component", "Method", "action")    // For validation errors
//	errors.WrapFatal(err, "Component", "Method", "action")      // For unrecoverable errors
//
// The generic Wrap() function keeps the original error reachable through the chain:
//
//	errors.Wrap(err, "Component", "Method", "action")
//
// # Standard Error Variables
//
//   - Component lifecycle: ErrAlreadyStarted, ErrNotStarted, ErrShuttingDown
//   - Connection issues: ErrNoConnection, ErrConnectionLost, ErrConnectionTimeout
//   - Data processing: ErrInvalidData, ErrDecodeFailed, ErrSchemaMismatch
//   - Configuration: ErrInvalidConfig, ErrMissingConfig, ErrUnknownCodec, ErrIncompatibleType
package errors
