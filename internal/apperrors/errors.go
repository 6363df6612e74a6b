package apperrors

import "errors"

// Sentinel errors for the marketplace core. Callers classify failures with
// errors.Is; wrap with fmt.Errorf("...: %w", Err...) to add detail.
var (
	// ErrInvalidRequest marks malformed or incomplete caller input. Surfaced
	// as a client error and never retried.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnsupportedVendor marks a vendor identifier outside the known set.
	ErrUnsupportedVendor = errors.New("unsupported vendor")

	// ErrUpstreamResponse marks a vendor payload with an unexpected shape.
	// Retrying does not help; surfaced as an internal error.
	ErrUpstreamResponse = errors.New("unexpected vendor response")

	// ErrCipher marks an encryption or decryption failure on the voucher
	// wire protocol. Never retried: the key is fixed, so a mismatch is
	// deterministic.
	ErrCipher = errors.New("cipher failure")

	// ErrOrderProcessing marks an aggregate failure while placing a
	// multi-vendor order. No partial-result detail is exposed to callers.
	ErrOrderProcessing = errors.New("order processing failed")
)
