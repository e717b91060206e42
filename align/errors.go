package align

import "errors"

// Sentinel errors for the spec.md §7 taxonomy. Every fatal condition in the
// reference implementation surfaces here as a typed error instead of a
// process abort (spec.md §9, "fatal-error-exit -> typed errors").
var (
	// ErrReversingEdgeUnsupported mirrors graph.ErrReversingEdgeUnsupported;
	// align wraps it so callers only need to import one error set.
	ErrReversingEdgeUnsupported = errors.New("align: reversing edge unsupported")

	// ErrPinLeftWithoutPin: pin_left=true requires pinned=true.
	ErrPinLeftWithoutPin = errors.New("align: pin_left requires pinned alignment")

	// ErrMultiAltWithoutPin: multi_alt>1 is only defined for pinned/global modes.
	ErrMultiAltWithoutPin = errors.New("align: multi_alt > 1 requires pinned or global-banded alignment")

	// ErrMultiAltMismatch: a single-alignment entry point was called with max_alt_alns != 1.
	ErrMultiAltMismatch = errors.New("align: max_alt_alns must be 1 for a single-alignment entry point")

	// ErrNonEmptyAltBuffer: the caller-supplied alternates slice was non-empty.
	ErrNonEmptyAltBuffer = errors.New("align: alternates must be supplied empty")

	// ErrQualityLengthMismatch: quality-adjusted mode with |quality| != |sequence|.
	ErrQualityLengthMismatch = errors.New("align: quality length does not match sequence length")

	// ErrMappingQualityUninitialized: ComputeMappingQuality called before InitMappingQuality.
	ErrMappingQualityUninitialized = errors.New("align: mapping quality calibrator not initialized")

	// ErrCigarInvariantViolated: internal bug — dummy-node excise reached an
	// impossible state. Never expected on valid input; surfaced rather than
	// panicking so a caller can log-and-skip a single malformed read.
	ErrCigarInvariantViolated = errors.New("align: cigar invariant violated during dummy-node excise")
)
