package broadcast

import "fmt"

// ErrBroadcasterClosed is returned by Broadcast after Close.
type ErrBroadcasterClosed struct{}

func (e ErrBroadcasterClosed) Error() string {
	return "broadcast: broadcaster is closed"
}

// ErrSubscriberClosed is returned when operating on a closed subscriber.
type ErrSubscriberClosed struct {
	ID string
}

func (e ErrSubscriberClosed) Error() string {
	return fmt.Sprintf("broadcast: subscriber %s is closed", e.ID)
}
