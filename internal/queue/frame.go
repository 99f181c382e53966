package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TypeFrame marks messages carrying a frame envelope.
const TypeFrame = "frame"

// Frame is one captured video frame handed to the recognizer. The image
// itself lives behind the URL; the queue only moves the envelope.
type Frame struct {
	ID         string    `json:"id"`
	ImageURL   string    `json:"image_url"`
	Source     string    `json:"source,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

// NewFrame builds a frame envelope with a fresh id.
func NewFrame(imageURL, source string, capturedAt time.Time) Frame {
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}
	return Frame{
		ID:         uuid.NewString(),
		ImageURL:   imageURL,
		Source:     source,
		CapturedAt: capturedAt,
	}
}

// Message wraps the frame for the queue.
func (f Frame) Message() (Message, error) {
	body, err := json.Marshal(f)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: TypeFrame, Body: body}, nil
}

// DecodeFrame unwraps a frame envelope from a queue message.
func DecodeFrame(msg Message) (Frame, error) {
	var f Frame
	err := json.Unmarshal(msg.Body, &f)
	return f, err
}
