package ledger

import "errors"

var (
	// ErrRejected: the submission completed and the ledger reported failure.
	// Definitely not applied.
	ErrRejected = errors.New("ledger rejected transaction")

	// ErrUnreachable: the RPC itself failed or timed out. Outcome unknown —
	// the submission may still have been applied. Callers must not treat
	// this as "no state change".
	ErrUnreachable = errors.New("ledger unreachable")

	// ErrNotFound: the referenced entity does not exist on the ledger.
	ErrNotFound = errors.New("not found on ledger")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsUnreachable(err error) bool { return errors.Is(err, ErrUnreachable) }
