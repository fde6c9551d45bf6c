package session

import "errors"

// Bid protocol rejection reasons. All are recoverable values surfaced to
// the submitting client; none mutate session state.
var (
	// ErrAuctionNotActive rejects bids while the auction is paused or
	// completed, or while the clock is in the buffer between teams.
	ErrAuctionNotActive = errors.New("auction is not accepting bids")

	// ErrBidTooLow rejects bids that do not strictly exceed the current
	// high bid.
	ErrBidTooLow = errors.New("bid must be greater than the current bid")

	// ErrExceedsBudget rejects bids above the participant's remaining
	// budget when a spending cap is configured.
	ErrExceedsBudget = errors.New("bid exceeds remaining budget")

	// ErrUnknownParticipant rejects bids from ids that are not members
	// of this auction.
	ErrUnknownParticipant = errors.New("participant is not part of this auction")
)
