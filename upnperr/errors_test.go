package upnperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	inner := fmt.Errorf("%w: out of range", ErrInvalidArgument)
	var err error = &InvalidArgumentError{Argument: "DesiredVolume", Err: inner}
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "DesiredVolume")

	err = &UnsupportedArgumentError{Unsupported: []string{"Foo"}, Supported: []string{"InstanceID", "Channel"}}
	assert.ErrorIs(t, err, ErrUnsupportedArgument)
	assert.Equal(t, "unsupported arguments: Foo. Supported arguments: InstanceID, Channel", err.Error())

	err = fmt.Errorf("calling Play: %w", &TransportError{StatusCode: 500, UPnPErrorCode: 701, UPnPErrorDescription: "Transition not available"})
	assert.ErrorIs(t, err, ErrTransportFailure)
	var te *TransportError
	assert.True(t, errors.As(err, &te))
	assert.Equal(t, 701, te.UPnPErrorCode)
}

func TestNotStartedIsIllegalState(t *testing.T) {
	assert.ErrorIs(t, ErrNotStarted, ErrIllegalState)
	assert.NotErrorIs(t, ErrIllegalState, ErrNotStarted)
}
