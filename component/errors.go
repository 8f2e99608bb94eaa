package component

import (
	"errors"
	"fmt"
)

var ErrServerStopped = errors.New("component server stopped")

type ClientErrorKind uint8

const (
	CommunicationFailure ClientErrorKind = iota
	RequestSerializationFailure
	ResponseDeserializationFailure
	// the remote server answered with a non-success status
	ResponseError
	// the response does not answer the request that was sent
	UnexpectedResponse
)

func (k ClientErrorKind) String() string {
	switch k {
	case CommunicationFailure:
		return "communication failure"
	case RequestSerializationFailure:
		return "request serialization failure"
	case ResponseDeserializationFailure:
		return "response deserialization failure"
	case ResponseError:
		return "response error"
	case UnexpectedResponse:
		return "unexpected response"
	default:
		return fmt.Sprintf("ClientErrorKind(%d)", uint8(k))
	}
}

// ClientError is a failure to deliver a request or to get its response back.
type ClientError struct {
	Kind ClientErrorKind
	Err  error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("component client: %s: %v", e.Kind, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}
