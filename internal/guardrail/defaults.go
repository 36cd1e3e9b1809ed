package guardrail

import (
	"github.com/mbergo/guardrails/internal/store"
)

// DefaultRegistry assembles the full catalog of checks in sidebar order.
// Checks that compare output against reference data get the repository; the
// rest are self-contained.
func DefaultRegistry(ref store.ReferenceRepository) *Registry {
	return NewRegistry(
		newEmptyIncomplete(),
		newInvalidSQL(),
		newMismatchedStructure(ref),
		newUnexpectedTypes(ref),
		newAPIFailure(),
		newPhantomData(ref),
		newFutureDate(nil),
		newContradiction(),
		newBiasDetection(),
		newConfidenceThreshold(),
		newSensitivity(),
	)
}
