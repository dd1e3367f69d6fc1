package services

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"github.com/dmitrijs2005/clouddemo/internal/client/client"
	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/dmitrijs2005/clouddemo/internal/client/repositories/messages"
	"github.com/dmitrijs2005/clouddemo/internal/logging"
	"github.com/supabase-community/postgrest-go"
)

// ChatChannel is the realtime channel chat inserts are fanned out on.
const ChatChannel = "realtime-messages"

var messageInserts = client.ChangeFilter{Event: "INSERT", Schema: "public", Table: "messages"}

// ChatService reads, sends and follows chat messages.
type ChatService interface {
	// Recent returns up to the configured number of latest messages, oldest first.
	Recent(ctx context.Context) ([]models.Message, error)
	Send(ctx context.Context, content string) (*models.Message, error)
	// Follow subscribes to newly inserted messages. The feed ends when ctx
	// is done or the feed is closed.
	Follow(ctx context.Context, onStatus func(client.ChannelStatus)) (*MessageFeed, error)
}

type chatService struct {
	tables   client.Tables
	sessions SessionSource
	changes  client.Changes
	limit    int
	log      logging.Logger
	newRepo  func(*postgrest.Client) messages.Repository
}

func NewChatService(tables client.Tables, sessions SessionSource, changes client.Changes, limit int, log logging.Logger) ChatService {
	return &chatService{
		tables:   tables,
		sessions: sessions,
		changes:  changes,
		limit:    limit,
		log:      log,
		newRepo:  func(tc *postgrest.Client) messages.Repository { return messages.NewRESTRepository(tc) },
	}
}

// scoped runs fn with a repository acting as sess's user.
func (s *chatService) scoped(ctx context.Context, sess *models.Session, fn func(repo messages.Repository) error) error {
	tc, done := s.tables.As(ctx, sess.AccessToken)
	defer done()
	return fn(s.newRepo(tc))
}

func (s *chatService) Recent(ctx context.Context) ([]models.Message, error) {
	sess, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}

	var result []models.Message
	err = s.scoped(ctx, sess, func(repo messages.Repository) error {
		result, err = repo.ListRecent(ctx, s.limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return result, nil
}

func (s *chatService) Send(ctx context.Context, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}
	sess, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}

	m := &models.Message{Content: content, UserID: sess.User.ID}
	err = s.scoped(ctx, sess, func(repo messages.Repository) error {
		return repo.Create(ctx, m)
	})
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return m, nil
}

func (s *chatService) Follow(ctx context.Context, onStatus func(client.ChannelStatus)) (*MessageFeed, error) {
	sess, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	stream, err := s.changes.Subscribe(ctx, sess.AccessToken, ChatChannel, messageInserts, onStatus)
	if err != nil {
		return nil, fmt.Errorf("follow messages: %w", err)
	}
	return NewMessageFeed(stream, s.log), nil
}

// MessageFeed is a cancellable subscription to inserted messages.
type MessageFeed struct {
	stream client.RecordStream
	log    logging.Logger
}

// NewMessageFeed wraps stream. A nil log discards warnings.
func NewMessageFeed(stream client.RecordStream, log logging.Logger) *MessageFeed {
	if log == nil {
		log = logging.Discard()
	}
	return &MessageFeed{stream: stream, log: log}
}

// Messages yields every inserted message until the subscription ends.
// Records that do not decode as messages are logged and skipped.
func (f *MessageFeed) Messages() iter.Seq[models.Message] {
	return func(yield func(models.Message) bool) {
		for raw := range f.stream.Records() {
			var m models.Message
			if err := json.Unmarshal(raw, &m); err != nil || m.ID == "" {
				f.log.Warn(context.Background(), "skipping undecodable message record", "record", string(raw))
				continue
			}
			if !yield(m) {
				return
			}
		}
	}
}

// Close releases the subscription; it is safe to call more than once.
func (f *MessageFeed) Close() error {
	return f.stream.Close()
}
