package mqttstate

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/mediastore/internal/config"
	"github.com/llehouerou/mediastore/internal/playback"
)

// Publisher mirrors playback events onto MQTT topics.
type Publisher struct {
	client Client
	topics Topics
	qos    byte
	retain bool
	logger zerolog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Publisher) { p.logger = l }
}

// NewPublisher creates a publisher. cfg should already have its defaults
// applied.
func NewPublisher(client Client, cfg config.MQTTConfig, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		topics: Topics{Prefix: cfg.TopicPrefix},
		qos:    1,
		retain: true,
		logger: zerolog.Nop(),
	}
	if cfg.QoS != nil {
		p.qos = byte(*cfg.QoS)
	}
	if cfg.Retain != nil {
		p.retain = *cfg.Retain
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run publishes the current snapshot, then every event from svc until ctx
// ends or svc is closed.
func (p *Publisher) Run(ctx context.Context, svc playback.Service) {
	sub := svc.Subscribe()

	snap := svc.Snapshot()
	p.publishState(snap.State, snap.Position)
	p.publishTrack(snap.Current, "snapshot")
	p.publishQueue(snap.Queue, snap.Suspended)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case e := <-sub.StateChanged:
			p.publishState(e.Current, svc.Position())
		case e := <-sub.TrackChanged:
			p.publishTrack(e.Current, e.Reason.String())
		case e := <-sub.QueueChanged:
			p.publishQueue(e.Tracks, e.Suspended)
		case e := <-sub.Error:
			p.publishError(e)
		}
	}
}

func (p *Publisher) publishState(s playback.State, pos time.Duration) {
	p.send(p.topics.State(), statePayload{State: stateName(s), PositionSec: pos.Seconds()}, p.retain)
}

func (p *Publisher) publishTrack(t *playback.Track, reason string) {
	p.send(p.topics.Track(), currentPayload{Track: toTrack(t), Reason: reason}, p.retain)
}

func (p *Publisher) publishQueue(tracks []playback.Track, suspended *playback.Track) {
	p.send(p.topics.Queue(), toQueue(tracks, suspended), p.retain)
}

func (p *Publisher) publishError(e playback.ErrorEvent) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	p.send(p.topics.Error(), errorPayload{Operation: e.Operation, ID: e.ID, Error: msg}, false)
}

func (p *Publisher) send(topic string, v any, retain bool) {
	payload, err := json.Marshal(v)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", topic).Msg("marshal state")
		return
	}
	if err := p.client.Publish(topic, payload, p.qos, retain); err != nil {
		p.logger.Warn().Err(err).Str("topic", topic).Msg("publish state")
		return
	}
	p.logger.Debug().Str("topic", topic).Int("size", len(payload)).Msg("state published")
}
