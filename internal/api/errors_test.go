package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitevents/bitevents/internal/model"
)

func TestClassifyPrecedence(t *testing.T) {
	// The server's own message always wins, whatever the status.
	assert.Equal(t, "Event is fully booked",
		classify(http.StatusConflict, model.ErrorResponse{Message: "Event is fully booked"}))
	assert.Equal(t, "custom",
		classify(http.StatusInternalServerError, model.ErrorResponse{Message: "custom", Error: "ignored"}))

	// The error field is the fallback carrier some endpoints use.
	assert.Equal(t, "validation failed",
		classify(http.StatusBadRequest, model.ErrorResponse{Error: "validation failed"}))

	// With an empty body the status decides.
	empty := model.ErrorResponse{}
	assert.Equal(t, msgBadRequest, classify(http.StatusBadRequest, empty))
	assert.Equal(t, msgUnauthorized, classify(http.StatusUnauthorized, empty))
	assert.Equal(t, msgForbidden, classify(http.StatusForbidden, empty))
	assert.Equal(t, msgNotFound, classify(http.StatusNotFound, empty))
	assert.Equal(t, msgConflict, classify(http.StatusConflict, empty))
	assert.Equal(t, msgServerError, classify(http.StatusInternalServerError, empty))

	// Statuses outside the table still produce something readable.
	assert.Equal(t, msgFallback, classify(http.StatusTeapot, empty))
	assert.Equal(t, msgFallback, classify(http.StatusBadGateway, empty))
}

func TestMessageIsTotal(t *testing.T) {
	assert.Empty(t, Message(nil))
	assert.Equal(t, msgFallback, Message(errors.New("squirrels chewed the cable")))
	assert.Equal(t, "boom", Message(&Error{Status: 500, Message: "boom"}))
	assert.Equal(t, msgFallback, Message(&Error{Status: 500}))

	// Wrapped API errors are still recognized.
	wrapped := fmt.Errorf("list events: %w", &Error{Status: 404, Message: msgNotFound})
	assert.Equal(t, msgNotFound, Message(wrapped))
}

func TestStatusPredicates(t *testing.T) {
	notFound := &Error{Status: http.StatusNotFound, Message: msgNotFound}
	unauthorized := &Error{Status: http.StatusUnauthorized, Message: msgUnauthorized}

	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsNotFound(fmt.Errorf("get event: %w", notFound)))
	assert.False(t, IsNotFound(unauthorized))
	assert.False(t, IsNotFound(errors.New("nope")))

	assert.True(t, IsUnauthorized(unauthorized))
	assert.False(t, IsUnauthorized(notFound))
}
