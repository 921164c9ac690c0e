package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttendeeInputValidate(t *testing.T) {
	valid := AttendeeInput{TicketTypeID: 10, Name: "Jamie Doe", Email: "jamie@example.com"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name     string
		attendee AttendeeInput
	}{
		{"missing name", AttendeeInput{Email: "jamie@example.com"}},
		{"blank name", AttendeeInput{Name: "   ", Email: "jamie@example.com"}},
		{"name too long", AttendeeInput{Name: strings.Repeat("a", 256), Email: "jamie@example.com"}},
		{"missing email", AttendeeInput{Name: "Jamie Doe"}},
		{"malformed email", AttendeeInput{Name: "Jamie Doe", Email: "not-an-email"}},
		{"phone too long", AttendeeInput{Name: "Jamie Doe", Email: "jamie@example.com", Phone: strings.Repeat("1", 33)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.attendee.Validate()
			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestPlaceholderAttendee(t *testing.T) {
	placeholder := PlaceholderAttendee(10)
	assert.Equal(t, 10, placeholder.TicketTypeID)
	assert.NotEmpty(t, placeholder.Name)

	// Placeholders must survive the same validation as real input.
	assert.NoError(t, placeholder.Validate())
}
