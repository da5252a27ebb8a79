package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestCodeOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("fetch: %w", Unparsable("bad json", nil))

	assert.Equal(t, ErrUnparsableResponse, CodeOf(err))
	assert.True(t, Is(err, ErrUnparsableResponse))
	assert.False(t, Is(nil, ErrUnparsableResponse))
	assert.Equal(t, ErrInternal, CodeOf(fmt.Errorf("plain")))
}

func TestRecoverable(t *testing.T) {
	assert.True(t, Recoverable(MissingCredential("gemini")))
	assert.True(t, Recoverable(AIService("down", nil)))
	assert.True(t, Recoverable(Unparsable("bad", nil)))
	assert.False(t, Recoverable(UnsupportedPlatform("speech recognition")))
	assert.True(t, Recoverable(fmt.Errorf("wrapped: %w", New(ErrTimeout, "slow"))))
	assert.False(t, Recoverable(Validation("empty text")))
	assert.False(t, Recoverable(fmt.Errorf("plain")))
}

func TestAppError_Status(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("x").HTTPStatus())
	assert.Equal(t, http.StatusNotImplemented, UnsupportedPlatform("mic").HTTPStatus())
	assert.Equal(t, codes.Unavailable, AIService("down", nil).GRPCStatus().Code())
	assert.Equal(t, codes.NotFound, NotFound("topic").GRPCStatus().Code())
	assert.Equal(t, http.StatusTooManyRequests, New(ErrSessionBusy, "busy").HTTPStatus())
	assert.Equal(t, codes.Canceled, RecognitionAborted("r-1").GRPCStatus().Code())
	assert.Equal(t, http.StatusBadGateway, Storage("upload", nil).HTTPStatus())
	assert.Equal(t, codes.Unavailable, PubSub("publish", nil).GRPCStatus().Code())
}

func TestAppError_Error(t *testing.T) {
	err := Wrap(ErrAIService, "gemini failed", fmt.Errorf("503"))
	assert.Equal(t, "AI_SERVICE_ERROR: gemini failed: 503", err.Error())
	assert.Equal(t, "NOT_FOUND: topic not found", NotFound("topic").Error())
}
