package synth

import "fmt"

// RemoteMutationError is a terminal failure of a batch send after its
// retry. Batches flushed before this point remain applied; the remote API
// offers no multi-batch transaction primitive, so no rollback is
// attempted.
type RemoteMutationError struct {
	Err error
}

func (e *RemoteMutationError) Error() string {
	return fmt.Sprintf("remote mutation failed: %v", e.Err)
}

func (e *RemoteMutationError) Unwrap() error { return e.Err }

// ResyncInconsistencyError reports that a post-flush refetch disagreed
// with the locally predicted cursor outside of a table operation. This is
// an offset-arithmetic invariant violation, not an external condition,
// and it fails the render loudly instead of being silently corrected.
type ResyncInconsistencyError struct {
	Predicted int64
	Actual    int64
}

func (e *ResyncInconsistencyError) Error() string {
	return fmt.Sprintf("cursor out of sync with document: predicted end %d, fetched end %d", e.Predicted, e.Actual)
}
