package thibis

import (
	"context"
	"net/http"
	"net/url"
)

// Messages returns the full history of a channel in ascending creation
// order. Ordering beyond what the backing log provides is not guaranteed.
func (s *Session) Messages(ctx context.Context, channelID string) ([]Message, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodGet,
		"/v1/channels/"+url.PathEscape(channelID)+"/messages", nil)
	if err != nil {
		return nil, err
	}

	var messages []Message
	if err := decodeJSON(resp, &messages, http.StatusOK); err != nil {
		return nil, err
	}
	return messages, nil
}

type sendMessageRequest struct {
	Content string `json:"content"`
	UserID  string `json:"user_id"`
}

// SendMessage appends a message to the channel and returns the stored row.
func (s *Session) SendMessage(ctx context.Context, channelID, content string) (Message, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPost,
		"/v1/channels/"+url.PathEscape(channelID)+"/messages",
		sendMessageRequest{Content: content, UserID: s.UserID()})
	if err != nil {
		return Message{}, err
	}

	var msg Message
	if err := decodeJSON(resp, &msg, http.StatusCreated); err != nil {
		return Message{}, err
	}
	return msg, nil
}
