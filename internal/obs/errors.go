package obs

import (
	"errors"
	"fmt"
)

// ErrAuthFailed marks a connect attempt the server rejected because of
// bad credentials (websocket close code 4009). It is never retried
// automatically.
var ErrAuthFailed = errors.New("obs rejected the authentication")

// ErrConnLost marks a transport-level failure: the connection is gone and
// a reconnect is needed.
var ErrConnLost = errors.New("obs connection lost")

// IsAuthFailure reports whether err means the credentials were rejected.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

// IsConnLost reports whether err means the transport is dead.
func IsConnLost(err error) bool {
	return errors.Is(err, ErrConnLost)
}

// RequestError is a request the server refused. The connection is still
// healthy; only the individual command failed.
type RequestError struct {
	Code    int
	Comment string
}

func (e *RequestError) Error() string {
	if e.Comment == "" {
		return fmt.Sprintf("obs request failed with code %d", e.Code)
	}
	return fmt.Sprintf("obs request failed with code %d: %s", e.Code, e.Comment)
}
