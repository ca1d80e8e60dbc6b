package apps

import (
	"errors"
	"fmt"
)

// Status is the testing-workflow state of an App. Statuses only move along
// the edges in transitions below; the one automatic edge
// (waiting_for_purchase -> purchased) is taken by the Stripe webhook, the
// rest are admin actions.
type Status string

const (
	StatusWaitingForPurchase     Status = "waiting_for_purchase"
	StatusPurchased              Status = "purchased"
	StatusTestersAdded           Status = "testers_added"
	StatusTestersAddedGooglePlay Status = "testers_added_google_play"
	StatusTestStarted            Status = "test_started"
	StatusTestReviewCompleted    Status = "test_review_completed"
)

var (
	ErrUnknownStatus     = errors.New("unknown status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// testers_added and testers_added_google_play toggle both ways: the admin can
// undo the "visible in Play console" confirmation before the test starts.
var transitions = map[Status][]Status{
	StatusWaitingForPurchase:     {StatusPurchased},
	StatusPurchased:              {StatusTestersAdded},
	StatusTestersAdded:           {StatusTestersAddedGooglePlay, StatusTestStarted},
	StatusTestersAddedGooglePlay: {StatusTestersAdded, StatusTestStarted},
	StatusTestStarted:            {StatusTestReviewCompleted},
	StatusTestReviewCompleted:    {},
}

// ParseStatus rejects anything outside the closed enum so free-form strings
// never reach storage.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

// ValidateTransition checks from -> to against the transition table. Callers
// pass the intended target state explicitly; nothing is inferred.
func ValidateTransition(from, to Status) error {
	next, ok := transitions[from]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, from)
	}
	for _, s := range next {
		if s == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Label returns the human-readable form shown in the dashboard.
func (s Status) Label() string {
	switch s {
	case StatusWaitingForPurchase:
		return "Waiting for Purchase"
	case StatusPurchased:
		return "Purchased"
	case StatusTestersAdded:
		return "Testers Added"
	case StatusTestersAddedGooglePlay:
		return "Testers Added to Google Play"
	case StatusTestStarted:
		return "Test Started"
	case StatusTestReviewCompleted:
		return "Test Review Completed"
	}
	return string(s)
}
