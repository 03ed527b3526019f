package thibis

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/thibis/thibis/pkg/idx"
)

// Subscription is a live feed of rows inserted into one channel. Events stop
// and the channel closes when Close is called, the context is cancelled or
// the stream breaks; Err reports why.
type Subscription struct {
	events chan Message
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Events returns the message feed. The channel is closed on teardown.
func (sub *Subscription) Events() <-chan Message { return sub.events }

// Err reports why the subscription ended, nil for a clean Close.
func (sub *Subscription) Err() error {
	<-sub.done
	return sub.err
}

// Close tears the subscription down and releases the underlying stream.
func (sub *Subscription) Close() {
	sub.cancel()
	<-sub.done
}

// SubscribeMessages opens a realtime feed of inserts into channelID. The
// caller owns the returned subscription and must Close it on teardown.
func (s *Session) SubscribeMessages(ctx context.Context, channelID string) (*Subscription, error) {
	body, streamCtx, cancel, err := s.openStream(ctx,
		"/v1/realtime/channels/"+url.PathEscape(channelID))
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		events: make(chan Message),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		defer close(sub.events)
		defer body.Close()

		sub.err = readEvents(body, func(data []byte) error {
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				return fmt.Errorf("failed to decode realtime event: %w", err)
			}
			// Close must never wait on a consumer that stopped reading, so
			// an in-flight delivery is abandoned once the stream is torn down.
			select {
			case sub.events <- msg:
			case <-streamCtx.Done():
			}
			return nil
		})
	}()

	return sub, nil
}

// PresenceSubscription tracks the current user on a presence channel and
// streams roster updates. Close untracks and stops the stream.
type PresenceSubscription struct {
	roster    chan []PresenceState
	cancel    context.CancelFunc
	done      chan struct{}
	err       error
	untrack   func()
	channelID string
}

// Roster returns the stream of full roster snapshots.
func (p *PresenceSubscription) Roster() <-chan []PresenceState { return p.roster }

// Err reports why the subscription ended, nil for a clean Close.
func (p *PresenceSubscription) Err() error {
	<-p.done
	return p.err
}

// Close untracks the current user and releases the stream.
func (p *PresenceSubscription) Close() {
	p.cancel()
	<-p.done
	p.untrack()
}

// TrackPresence announces state on the shared presence channel and subscribes
// to roster updates.
func (s *Session) TrackPresence(ctx context.Context, channelID string, state PresenceState) (*PresenceSubscription, error) {
	trackPath := "/v1/realtime/presence/" + url.PathEscape(channelID) + "/track"

	resp, err := s.doAuthJSON(ctx, http.MethodPost, trackPath, state)
	if err != nil {
		return nil, err
	}
	if err := checkStatusNoContent(resp); err != nil {
		return nil, err
	}

	body, streamCtx, cancel, err := s.openStream(ctx,
		"/v1/realtime/presence/"+url.PathEscape(channelID))
	if err != nil {
		return nil, err
	}

	sub := &PresenceSubscription{
		roster:    make(chan []PresenceState),
		cancel:    cancel,
		done:      make(chan struct{}),
		channelID: channelID,
		untrack: func() {
			// Best effort: the backend also expires stale presence itself.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if resp, err := s.doAuthJSON(ctx, http.MethodDelete, trackPath, nil); err == nil {
				_ = checkStatusNoContent(resp)
			}
		},
	}

	go func() {
		defer close(sub.done)
		defer close(sub.roster)
		defer body.Close()

		sub.err = readEvents(body, func(data []byte) error {
			var roster []PresenceState
			if err := json.Unmarshal(data, &roster); err != nil {
				return fmt.Errorf("failed to decode presence event: %w", err)
			}
			select {
			case sub.roster <- roster:
			case <-streamCtx.Done():
			}
			return nil
		})
	}()

	return sub, nil
}

// openStream starts a server-sent-events request on the timeout-free stream
// client. The returned cancel ends the stream; the returned context reports
// the teardown to the reader.
func (s *Session) openStream(ctx context.Context, path string) (io.ReadCloser, context.Context, context.CancelFunc, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, s.client.url(path), nil)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("failed to create stream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-Request-ID", idx.New().String())

	resp, err := s.client.StreamClient.Do(req)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("failed to open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()
		return nil, nil, nil, parseErrorResponse(resp, body)
	}

	return resp.Body, streamCtx, cancel, nil
}

// readEvents consumes a text/event-stream body, invoking handle for each data
// payload. A cancelled stream reads as a closed body and returns nil.
func readEvents(body io.Reader, handle func(data []byte) error) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue // comments, event names and keep-alives
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if err := handle([]byte(data)); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil && !isCanceled(err) {
		return err
	}
	return nil
}

func isCanceled(err error) bool {
	return err == context.Canceled ||
		strings.Contains(err.Error(), "context canceled") ||
		strings.Contains(err.Error(), "use of closed network connection")
}
