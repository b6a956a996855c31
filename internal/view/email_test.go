package view

import (
	"testing"
	"time"

	"bjorkvang/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder() *Builder {
	return &Builder{
		BaseURL: "https://booking.example.com/",
		From:    "post@example.com",
		BoardTo: []string{"styret@example.com"},
		Bcc:     []string{"arkiv@example.com"},
	}
}

func emailBooking() *models.Booking {
	start := time.Date(2026, 10, 10, 18, 0, 0, 0, time.UTC)
	return &models.Booking{
		ID:    "abc-123",
		Start: start,
		End:   start.Add(4 * time.Hour),
		Requester: models.Requester{
			Name:  "Kari Nordmann",
			Email: "kari@example.com",
		},
		EventType: "bursdag",
		Spaces:    []string{"storsalen"},
		Status:    models.StatusPending,
	}
}

func TestBoardRequestEmail(t *testing.T) {
	msg := testBuilder().BoardRequestEmail(emailBooking())
	require.NotNil(t, msg)

	assert.Equal(t, []string{"styret@example.com"}, msg.To)
	assert.Equal(t, "post@example.com", msg.From)
	// Replies should reach the requester directly.
	assert.Equal(t, "kari@example.com", msg.ReplyTo)
	assert.Contains(t, msg.Subject, "Ny bookingforespørsel")
	assert.Contains(t, msg.Subject, "bursdag")

	// Action links carry the store-assigned id, no double slash.
	assert.Contains(t, msg.Text, "https://booking.example.com/api/booking/approve?id=abc-123")
	assert.Contains(t, msg.Text, "https://booking.example.com/api/booking/reject?id=abc-123")
	assert.Contains(t, msg.HTML, "approve?id=abc-123")
}

func TestBoardRequestEmailEscapesHTML(t *testing.T) {
	b := emailBooking()
	b.Message = `<script>alert("x")</script>`

	msg := testBuilder().BoardRequestEmail(b)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
}

func TestReceiptEmail(t *testing.T) {
	msg := testBuilder().ReceiptEmail(emailBooking())
	require.NotNil(t, msg)

	assert.Equal(t, []string{"kari@example.com"}, msg.To)
	assert.Contains(t, msg.Text, "Kari Nordmann")
	// The receipt never exposes the board's action links.
	assert.NotContains(t, msg.Text, "approve?id=")
}

func TestDecisionEmail(t *testing.T) {
	builder := testBuilder()
	b := emailBooking()

	approved := builder.DecisionEmail(b, true)
	require.NotNil(t, approved)
	assert.Equal(t, []string{"kari@example.com"}, approved.To)
	assert.Contains(t, approved.Subject, "bekreftet")

	rejected := builder.DecisionEmail(b, false)
	assert.Contains(t, rejected.Subject, "avvist")
}

func TestDecisionPage(t *testing.T) {
	assert.Contains(t, DecisionPage(true), "godkjent")
	assert.Contains(t, DecisionPage(false), "avvist")
	assert.Contains(t, ErrorPage("<oops>"), "&lt;oops&gt;")
}
