package numerai

import (
	"errors"
	"fmt"
)

// Sentinel kinds for transport errors.
var (
	ErrGraphQL            = errors.New("graphql error")
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// APIError is returned when the API answers with a non-200 status.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}
