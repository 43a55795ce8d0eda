package gql

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// wsMessage is a graphql-ws protocol frame.
type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	msgConnectionInit = "connection_init"
	msgConnectionAck  = "connection_ack"
	msgStart          = "start"
	msgStop           = "stop"
	msgData           = "data"
	msgError          = "error"
	msgComplete       = "complete"
	msgKeepAlive      = "ka"
)

// Subscriber opens graphql-ws subscriptions for job progress events.
type Subscriber struct {
	URL    string
	APIKey string
	Dialer *websocket.Dialer
	Logger *logrus.Logger
}

// Subscription is one live onScraperJobUpdate stream. Events arrive on
// Events in wire order until the stream ends; the first stream fault is
// delivered on Errs. Close is idempotent.
type Subscription struct {
	Events <-chan ScraperJob
	Errs   <-chan error

	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
}

// Close stops the subscription and releases the connection.
func (s *Subscription) Close() {
	s.cancel()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
	}
}

// Subscribe opens an onScraperJobUpdate stream, optionally filtered to one
// job id.
func (s *Subscriber) Subscribe(ctx context.Context, jobID string) (*Subscription, error) {
	dialer := s.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	}

	header := http.Header{}
	header.Set("Sec-WebSocket-Protocol", "graphql-ws")
	if s.APIKey != "" {
		header.Set("x-api-key", s.APIKey)
	}

	conn, _, err := dialer.DialContext(ctx, s.URL, header)
	if err != nil {
		return nil, errors.Wrap(err, "dial subscription endpoint")
	}

	if err := conn.WriteJSON(wsMessage{Type: msgConnectionInit}); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "connection_init")
	}
	if err := awaitAck(conn); err != nil {
		conn.Close()
		return nil, err
	}

	vars := map[string]interface{}{}
	if jobID != "" {
		vars["jobId"] = jobID
	}
	startPayload, err := json.Marshal(map[string]interface{}{
		"query":     subscriptionJobUpdate,
		"variables": vars,
	})
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "marshal start payload")
	}
	if err := conn.WriteJSON(wsMessage{ID: "1", Type: msgStart, Payload: startPayload}); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "start subscription")
	}

	subCtx, cancel := context.WithCancel(ctx)
	events := make(chan ScraperJob, 16)
	errs := make(chan error, 1)
	sub := &Subscription{
		Events: events,
		Errs:   errs,
		conn:   conn,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		<-subCtx.Done()
		// Best effort; the peer may already be gone.
		_ = conn.WriteJSON(wsMessage{ID: "1", Type: msgStop})
		_ = conn.Close()
	}()

	go s.readLoop(subCtx, conn, events, errs, sub.done)

	return sub, nil
}

func awaitAck(conn *websocket.Conn) error {
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	defer conn.SetReadDeadline(time.Time{})
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return errors.Wrap(err, "await connection_ack")
		}
		switch msg.Type {
		case msgConnectionAck:
			return nil
		case msgKeepAlive:
			continue
		case msgError:
			return errors.Errorf("subscription rejected: %s", string(msg.Payload))
		}
	}
}

func (s *Subscriber) readLoop(ctx context.Context, conn *websocket.Conn, events chan<- ScraperJob, errs chan<- error, done chan<- struct{}) {
	defer close(done)
	defer close(events)
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil {
				sendErr(errs, errors.Wrap(err, "read subscription frame"))
			}
			return
		}
		switch msg.Type {
		case msgData:
			var payload struct {
				Data struct {
					OnScraperJobUpdate *ScraperJob `json:"onScraperJobUpdate"`
				} `json:"data"`
			}
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				if s.Logger != nil {
					s.Logger.WithError(err).Warn("discarding malformed job event")
				}
				continue
			}
			if payload.Data.OnScraperJobUpdate == nil {
				continue
			}
			select {
			case events <- *payload.Data.OnScraperJobUpdate:
			case <-ctx.Done():
				return
			}
		case msgError:
			sendErr(errs, errors.Errorf("subscription error: %s", string(msg.Payload)))
		case msgComplete:
			return
		case msgKeepAlive:
			// ignore
		}
	}
}

// sendErr delivers the first fault and drops the rest; Errs has capacity 1.
func sendErr(errs chan<- error, err error) {
	select {
	case errs <- err:
	default:
	}
}
