package sentinel

import "errors"

var (
	// ErrNoMatchingLocation means a hostile fleet is heading to coordinates that
	// no tracked planet occupies. The cycle stops at that event.
	ErrNoMatchingLocation = errors.New("no planet or moon matches the attacked location")

	// ErrTimeComputation means the next wake time could not be represented.
	ErrTimeComputation = errors.New("time computation error")
)
