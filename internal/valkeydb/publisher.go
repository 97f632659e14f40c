package valkeydb

import (
	"context"
	"encoding/json"
	"time"

	"shortlist-monitor/internal/poller"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/valkey-io/valkey-go"
)

// DefaultPublishTimeout bounds a single PUBLISH. Listeners run while the
// coordinator holds its session read lock, so a slow server delays
// Activate and Deactivate by up to this much per event.
const DefaultPublishTimeout = 250 * time.Millisecond

type MessageType string

const (
	MessageUpdate  MessageType = "update"
	MessageResults MessageType = "results"
	MessageFailure MessageType = "failure"
)

// Message is the JSON envelope written to a job's channel.
type Message struct {
	Type      MessageType `json:"type"`
	SessionID uuid.UUID   `json:"session_id"`
	JobID     string      `json:"job_id"`
	Data      any         `json:"data"`
}

type failureData struct {
	Stage poller.Stage `json:"stage"`
	Kind  string       `json:"kind"`
	Error string       `json:"error"`
}

// Publisher forwards coordinator events to <prefix><jobId> so other
// processes can follow a job without polling the backend themselves.
// Publish errors are logged and never reach the coordinator.
type Publisher struct {
	client  valkey.Client
	prefix  string
	timeout time.Duration
}

// NewPublisher uses DefaultPublishTimeout when timeout is not positive.
func NewPublisher(client valkey.Client, prefix string, timeout time.Duration) *Publisher {

	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}

	return &Publisher{
		client:  client,
		prefix:  prefix,
		timeout: timeout,
	}
}

func (p *Publisher) Timeout() time.Duration {
	return p.timeout
}

func (p *Publisher) Channel(jobID string) string {
	return p.prefix + jobID
}

func (p *Publisher) OnUpdate(u poller.Update) {
	p.publish(Message{Type: MessageUpdate, SessionID: u.SessionID, JobID: u.JobID, Data: u})
}

func (p *Publisher) OnResults(r poller.Results) {
	p.publish(Message{Type: MessageResults, SessionID: r.SessionID, JobID: r.JobID, Data: r.Candidates})
}

func (p *Publisher) OnFailure(f poller.Failure) {
	p.publish(Message{
		Type:      MessageFailure,
		SessionID: f.SessionID,
		JobID:     f.JobID,
		Data: failureData{
			Stage: f.Stage,
			Kind:  string(f.Kind),
			Error: f.Err.Error(),
		},
	})
}

func (p *Publisher) publish(msg Message) {

	payload, err := json.Marshal(msg)

	if err != nil {
		log.Error().Err(err).Str("component", "valkeydb").Str("job_id", msg.JobID).Msg("Failed to encode message")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	channel := p.Channel(msg.JobID)
	cmd := p.client.B().Publish().Channel(channel).Message(string(payload)).Build()

	receivers, err := p.client.Do(ctx, cmd).AsInt64()

	if err != nil {
		log.Warn().
			Err(err).
			Str("component", "valkeydb").
			Str("channel", channel).
			Str("type", string(msg.Type)).
			Msg("Failed to publish job event")
		return
	}

	log.Debug().
		Str("component", "valkeydb").
		Str("channel", channel).
		Str("type", string(msg.Type)).
		Int64("receivers", receivers).
		Msg("Published job event")
}
