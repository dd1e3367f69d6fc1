package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/clouddemo/internal/logging"
	"github.com/gorilla/websocket"
)

const (
	realtimeProtocolVersion = "1.0.0"

	eventJoin      = "phx_join"
	eventLeave     = "phx_leave"
	eventReply     = "phx_reply"
	eventError     = "phx_error"
	eventClose     = "phx_close"
	eventHeartbeat = "heartbeat"
	eventChanges   = "postgres_changes"

	heartbeatTopic = "phoenix"
)

// frame is a Phoenix channel message.
type frame struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     *string         `json:"ref"`
	JoinRef *string         `json:"join_ref,omitempty"`
}

type joinPayload struct {
	Config struct {
		Broadcast struct {
			Self bool `json:"self"`
		} `json:"broadcast"`
		Presence struct {
			Key string `json:"key"`
		} `json:"presence"`
		PostgresChanges []ChangeFilter `json:"postgres_changes"`
	} `json:"config"`
	AccessToken string `json:"access_token,omitempty"`
}

type replyPayload struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

type changePayload struct {
	Data struct {
		Type   string          `json:"type"`
		Record json.RawMessage `json:"record"`
	} `json:"data"`
}

// Realtime subscribes to row changes over the platform's websocket.
type Realtime struct {
	wsURL       string
	dialer      *websocket.Dialer
	heartbeat   time.Duration
	joinTimeout time.Duration
	log         logging.Logger
}

func NewRealtime(baseURL, anonKey string, log logging.Logger) (*Realtime, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/realtime/v1/websocket")
	if err != nil {
		return nil, fmt.Errorf("realtime url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("apikey", anonKey)
	q.Set("vsn", realtimeProtocolVersion)
	u.RawQuery = q.Encode()

	return &Realtime{
		wsURL:       u.String(),
		dialer:      websocket.DefaultDialer,
		heartbeat:   25 * time.Second,
		joinTimeout: 10 * time.Second,
		log:         log,
	}, nil
}

// Subscribe joins channel and streams the new record of every change
// matching filter. onStatus (optional) observes the channel lifecycle and is
// called from the subscription's reader goroutine. The subscription ends when
// ctx is done, Close is called, or the server closes the channel.
func (r *Realtime) Subscribe(ctx context.Context, accessToken, channel string, filter ChangeFilter, onStatus func(ChannelStatus)) (RecordStream, error) {
	conn, _, err := r.dialer.DialContext(ctx, r.wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: realtime dial: %w", ErrUnavailable, err)
	}

	sctx, cancel := context.WithCancel(ctx)
	s := &subscription{
		conn:     conn,
		topic:    "realtime:" + channel,
		records:  make(chan json.RawMessage, 16),
		onStatus: onStatus,
		ctx:      sctx,
		cancel:   cancel,
		log:      r.log,
	}

	var join joinPayload
	join.Config.PostgresChanges = []ChangeFilter{filter}
	join.AccessToken = accessToken

	s.joinRef = s.nextRef()
	if err := s.send(s.topic, eventJoin, join, s.joinRef); err != nil {
		cancel()
		_ = conn.Close()
		return nil, fmt.Errorf("realtime join: %w", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(r.joinTimeout))

	s.wg.Add(3)
	go s.watch()
	go s.read()
	go s.beat(r.heartbeat)

	return s, nil
}

type subscription struct {
	conn    *websocket.Conn
	topic   string
	joinRef string
	ref     atomic.Uint64

	writeMu sync.Mutex

	records  chan json.RawMessage
	onStatus func(ChannelStatus)
	joined   bool

	ctx       context.Context
	cancel    context.CancelFunc
	closing   atomic.Bool
	closeOnce sync.Once
	wg        sync.WaitGroup

	log logging.Logger
}

func (s *subscription) Records() <-chan json.RawMessage {
	return s.records
}

// Close leaves the channel and releases the connection. It is safe to call
// more than once and waits for the subscription's goroutines to exit.
func (s *subscription) Close() error {
	s.closeOnce.Do(func() {
		s.closing.Store(true)
		if s.ctx.Err() == nil {
			_ = s.send(s.topic, eventLeave, struct{}{}, s.nextRef())
		}
		s.cancel()
	})
	s.wg.Wait()
	return nil
}

func (s *subscription) nextRef() string {
	return strconv.FormatUint(s.ref.Add(1), 10)
}

func (s *subscription) send(topic, event string, payload any, ref string) error {
	p, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	f := frame{Topic: topic, Event: event, Payload: p, Ref: &ref}
	if topic == s.topic {
		f.JoinRef = &s.joinRef
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return s.conn.WriteJSON(f)
}

func (s *subscription) status(st ChannelStatus) {
	s.log.Debug(s.ctx, "realtime channel status", "topic", s.topic, "status", st)
	if s.onStatus != nil {
		s.onStatus(st)
	}
}

// watch closes the connection once the subscription is over, which unblocks
// the reader.
func (s *subscription) watch() {
	defer s.wg.Done()
	<-s.ctx.Done()
	_ = s.conn.Close()
}

func (s *subscription) beat(every time.Duration) {
	defer s.wg.Done()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			if err := s.send(heartbeatTopic, eventHeartbeat, struct{}{}, s.nextRef()); err != nil {
				s.log.Warn(s.ctx, "realtime heartbeat failed", "error", err)
				s.cancel()
				return
			}
		}
	}
}

func (s *subscription) read() {
	defer s.wg.Done()
	defer close(s.records)
	defer s.status(StatusClosed)
	defer s.cancel()

	for {
		var f frame
		if err := s.conn.ReadJSON(&f); err != nil {
			if s.ctx.Err() != nil || s.closing.Load() {
				return
			}
			var ne net.Error
			if !s.joined && errors.As(err, &ne) && ne.Timeout() {
				s.status(StatusTimedOut)
				return
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				s.log.Warn(s.ctx, "realtime read failed", "error", err)
				s.status(StatusChannelError)
			}
			return
		}

		if f.Topic != s.topic {
			continue
		}

		switch f.Event {
		case eventReply:
			if f.Ref == nil || *f.Ref != s.joinRef || s.joined {
				continue
			}
			var reply replyPayload
			_ = json.Unmarshal(f.Payload, &reply)
			if reply.Status != "ok" {
				s.log.Warn(s.ctx, "realtime join refused", "response", string(reply.Response))
				s.status(StatusChannelError)
				return
			}
			s.joined = true
			_ = s.conn.SetReadDeadline(time.Time{})
			s.status(StatusSubscribed)

		case eventChanges:
			var p changePayload
			if err := json.Unmarshal(f.Payload, &p); err != nil || len(p.Data.Record) == 0 {
				s.log.Warn(s.ctx, "realtime change without record", "payload", string(f.Payload))
				continue
			}
			select {
			case s.records <- p.Data.Record:
			case <-s.ctx.Done():
				return
			}

		case eventError:
			s.status(StatusChannelError)
			return

		case eventClose:
			return
		}
	}
}
