package progress

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	ws "github.com/aprendeexcel/quiz-engine/pkg/http/ws"
)

const defaultChannel = "progress:updates"

// Update is the summary fanned out to a user's live connections after a save.
type Update struct {
	UserID            string     `json:"user_id"`
	AnsweredQuestions int        `json:"answered_questions"`
	CorrectAnswers    int        `json:"correct_answers"`
	TotalQuestions    int        `json:"total_questions"`
	TotalPoints       int        `json:"total_points"`
	MaxPoints         int        `json:"max_points"`
	AccuracyPercent   float64    `json:"accuracy_percent"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// UpdateFrom summarises a snapshot.
func UpdateFrom(snap Snapshot) Update {
	return Update{
		UserID:            snap.UserID,
		AnsweredQuestions: snap.AnsweredQuestions,
		CorrectAnswers:    snap.CorrectAnswers,
		TotalQuestions:    snap.TotalQuestions,
		TotalPoints:       snap.TotalPoints,
		MaxPoints:         snap.MaxPoints,
		AccuracyPercent:   snap.AccuracyPercent,
		CompletedAt:       snap.CompletedAt,
		UpdatedAt:         snap.LastUpdatedAt,
	}
}

// Message wraps an update in the WebSocket envelope.
func (u Update) Message() (ws.Message, error) {
	raw, err := json.Marshal(u)
	if err != nil {
		return ws.Message{}, err
	}
	return ws.Message{Type: ws.TypeProgressUpdate, Payload: raw}, nil
}

// UserSender delivers a message to every connection of one user.
type UserSender interface {
	SendToUser(userID string, msg ws.Message) error
}

// Broadcaster publishes progress updates on Redis Pub/Sub and forwards the
// ones it receives to local WebSocket connections, so every instance reaches
// every tab of the user.
type Broadcaster struct {
	redis   *redis.Client
	hub     UserSender
	channel string
	logger  zerolog.Logger
}

func NewBroadcaster(client *redis.Client, hub UserSender, channel string, logger zerolog.Logger) *Broadcaster {
	if channel == "" {
		channel = defaultChannel
	}
	return &Broadcaster{
		redis:   client,
		hub:     hub,
		channel: channel,
		logger:  logger.With().Str("component", "progress_broadcaster").Logger(),
	}
}

// Publish announces a saved snapshot.
func (b *Broadcaster) Publish(ctx context.Context, snap Snapshot) error {
	if b.redis == nil {
		return nil
	}
	payload, err := json.Marshal(UpdateFrom(snap))
	if err != nil {
		return err
	}
	return b.redis.Publish(ctx, b.channel, payload).Err()
}

// Run subscribes to the update channel and blocks until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.redis == nil || b.hub == nil {
		return nil
	}

	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.forward(msg.Payload)
		}
	}
}

func (b *Broadcaster) forward(payload string) {
	var upd Update
	if err := json.Unmarshal([]byte(payload), &upd); err != nil {
		b.logger.Warn().Err(err).Msg("failed to decode progress update payload")
		return
	}
	if upd.UserID == "" {
		return
	}
	msg, err := upd.Message()
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to marshal progress WS payload")
		return
	}
	if err := b.hub.SendToUser(upd.UserID, msg); err != nil && !errors.Is(err, ws.ErrConnectionNotFound) {
		b.logger.Warn().Err(err).Str("user_id", upd.UserID).Msg("failed to forward progress update")
	}
}
