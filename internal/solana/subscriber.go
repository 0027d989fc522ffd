package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/max-de-bug/ascii-art-indexer/internal/domain"
	"github.com/max-de-bug/ascii-art-indexer/internal/logger"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 90 * time.Second
	wsPingInterval = 30 * time.Second
)

// Subscriber delivers transaction signatures pushed by the node
//
//go:generate mockgen -source=subscriber.go -destination=../mocks/subscriber.go -package=mocks -mock_names=Subscriber=MockSubscriber
type Subscriber interface {
	// Subscribe connects, subscribes to logs mentioning the program and
	// forwards notifications to out until the context is cancelled or the
	// connection breaks. A broken connection returns
	// domain.ErrSubscriptionClosed; the caller decides whether to redial.
	Subscribe(ctx context.Context, out chan<- domain.SignatureInfo) error
}

// WSSubscriber implements Subscriber over a logsSubscribe websocket
type WSSubscriber struct {
	url       string
	programID string
	dialer    *websocket.Dialer
}

// NewWSSubscriber creates a subscriber for logs mentioning programID
func NewWSSubscriber(url, programID string) *WSSubscriber {
	return &WSSubscriber{
		url:       url,
		programID: programID,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 15 * time.Second,
		},
	}
}

type logsNotification struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Context struct {
				Slot uint64 `json:"slot"`
			} `json:"context"`
			Value struct {
				Signature string      `json:"signature"`
				Err       interface{} `json:"err"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// Subscribe connects and forwards log notifications for the program.
// Failed transactions are dropped at the socket.
func (s *WSSubscriber) Subscribe(ctx context.Context, out chan<- domain.SignatureInfo) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", s.url, err)
	}

	// unblock the blocking read when the context ends
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = conn.Close()
	}()

	subscribe := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "logsSubscribe",
		Params: []interface{}{
			map[string]interface{}{"mentions": []string{s.programID}},
			map[string]interface{}{"commitment": "confirmed"},
		},
	}
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := conn.WriteJSON(subscribe); err != nil {
		return fmt.Errorf("failed to send logsSubscribe: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(wsPongTimeout)); err != nil {
		return fmt.Errorf("failed to set read deadline: %w", err)
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	// read the subscription confirmation before streaming
	var confirm rpcResponse
	if err := conn.ReadJSON(&confirm); err != nil {
		return fmt.Errorf("failed to read subscription confirmation: %w", err)
	}
	if confirm.Error != nil {
		return fmt.Errorf("logsSubscribe rejected: %d %s", confirm.Error.Code, confirm.Error.Message)
	}
	logger.InfoCtx(ctx, "log subscription established",
		zap.String("program", s.programID))

	pingTicker := time.NewTicker(wsPingInterval)
	defer pingTicker.Stop()
	go func() {
		for {
			select {
			case <-pingTicker.C:
				deadline := time.Now().Add(wsWriteTimeout)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %v", domain.ErrSubscriptionClosed, err)
		}
		if err := conn.SetReadDeadline(time.Now().Add(wsPongTimeout)); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrSubscriptionClosed, err)
		}

		var note logsNotification
		if err := json.Unmarshal(msg, &note); err != nil || note.Method != "logsNotification" {
			continue
		}
		if note.Params.Result.Value.Err != nil {
			continue
		}

		info := domain.SignatureInfo{
			Signature: note.Params.Result.Value.Signature,
			Slot:      note.Params.Result.Context.Slot,
		}
		select {
		case out <- info:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
