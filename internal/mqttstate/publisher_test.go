package mqttstate

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/mediastore/internal/config"
	"github.com/llehouerou/mediastore/internal/playback"
	"github.com/llehouerou/mediastore/internal/player"
	"github.com/llehouerou/mediastore/internal/resource"
)

type message struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

type fakeClient struct {
	mu       sync.Mutex
	messages []message
	err      error
	closed   bool
}

func (f *fakeClient) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message{Topic: topic, Payload: payload, QoS: qos, Retained: retained})
	return nil
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// last returns the most recent message published on topic.
func (f *fakeClient) last(t *testing.T, topic string) message {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].Topic == topic {
			return f.messages[i]
		}
	}
	t.Fatalf("nothing published on %s", topic)
	return message{}
}

func (f *fakeClient) count(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.messages {
		if m.Topic == topic {
			n++
		}
	}
	return n
}

func testConfig() config.MQTTConfig {
	cfg := config.Config{MQTT: config.MQTTConfig{Broker: "tcp://localhost:1883", TopicPrefix: "/kiosk/"}}
	return cfg.GetMQTTConfig()
}

func request(id string, enqueue bool) playback.Request {
	return playback.Request{
		TargetID: id,
		Storage:  "sounds",
		Enqueue:  enqueue,
		Open: func() (resource.ByteSource, error) {
			return resource.NewMemSource([]byte(id)), nil
		},
	}
}

func decode[T any](t *testing.T, m message) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(m.Payload, &v))
	return v
}

func TestTopics(t *testing.T) {
	topics := Topics{Prefix: "kiosk"}
	assert.Equal(t, "kiosk/state", topics.State())
	assert.Equal(t, "kiosk/track", topics.Track())
	assert.Equal(t, "kiosk/queue", topics.Queue())
	assert.Equal(t, "kiosk/error", topics.Error())
	assert.Equal(t, "kiosk/status", statusTopic("kiosk"))
}

func TestPublisher_InitialSnapshot(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		client := &fakeClient{}
		svc := playback.New(player.NewMock())
		pub := NewPublisher(client, testConfig())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			pub.Run(ctx, svc)
			close(done)
		}()
		synctest.Wait()

		state := decode[statePayload](t, client.last(t, "kiosk/state"))
		assert.Equal(t, "idle", state.State)
		track := decode[currentPayload](t, client.last(t, "kiosk/track"))
		assert.Nil(t, track.Track)
		assert.Equal(t, "snapshot", track.Reason)
		queue := decode[queuePayload](t, client.last(t, "kiosk/queue"))
		assert.Empty(t, queue.Tracks)
		assert.Nil(t, queue.Suspended)

		m := client.last(t, "kiosk/state")
		assert.Equal(t, byte(1), m.QoS)
		assert.True(t, m.Retained)

		cancel()
		<-done
		_ = svc.Close()
	})
}

func TestPublisher_MirrorsPlayback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		client := &fakeClient{}
		mock := player.NewMock()
		svc := playback.New(mock)
		pub := NewPublisher(client, testConfig())

		done := make(chan struct{})
		go func() {
			pub.Run(context.Background(), svc)
			close(done)
		}()
		synctest.Wait()

		_, err := svc.Dispatch(request("chime", false))
		require.NoError(t, err)
		synctest.Wait()

		state := decode[statePayload](t, client.last(t, "kiosk/state"))
		assert.Equal(t, "playing", state.State)
		track := decode[currentPayload](t, client.last(t, "kiosk/track"))
		require.NotNil(t, track.Track)
		assert.Equal(t, "chime", track.Track.ID)
		assert.Equal(t, "sounds", track.Track.Storage)
		assert.Equal(t, "request", track.Reason)

		_, err = svc.Dispatch(request("door", true))
		require.NoError(t, err)
		synctest.Wait()

		queue := decode[queuePayload](t, client.last(t, "kiosk/queue"))
		require.Len(t, queue.Tracks, 1)
		assert.Equal(t, "door", queue.Tracks[0].ID)

		// Closing the service ends the publisher.
		require.NoError(t, svc.Close())
		<-done
	})
}

func TestPublisher_ErrorsAreNotRetained(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		client := &fakeClient{}
		mock := player.NewMock()
		svc := playback.New(mock)
		pub := NewPublisher(client, testConfig())

		done := make(chan struct{})
		go func() {
			pub.Run(context.Background(), svc)
			close(done)
		}()
		synctest.Wait()

		_, err := svc.Dispatch(request("chime", false))
		require.NoError(t, err)
		bad := request("missing", true)
		bad.Open = func() (resource.ByteSource, error) { return nil, resource.ErrNotFound }
		_, err = svc.Dispatch(bad)
		require.NoError(t, err)

		mock.SimulateFinished()
		svc.HandleFinished()
		synctest.Wait()

		m := client.last(t, "kiosk/error")
		assert.False(t, m.Retained)
		e := decode[errorPayload](t, m)
		assert.Equal(t, "missing", e.ID)
		assert.Equal(t, "queue", e.Operation)
		assert.Contains(t, e.Error, "not found")

		state := decode[statePayload](t, client.last(t, "kiosk/state"))
		assert.Equal(t, "idle", state.State)

		require.NoError(t, svc.Close())
		<-done
	})
}

func TestPublisher_PublishFailureDoesNotStop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		client := &fakeClient{err: ErrNotConnected}
		svc := playback.New(player.NewMock())
		pub := NewPublisher(client, testConfig())

		done := make(chan struct{})
		go func() {
			pub.Run(context.Background(), svc)
			close(done)
		}()
		synctest.Wait()

		_, err := svc.Dispatch(request("chime", false))
		require.NoError(t, err)
		synctest.Wait()
		assert.Equal(t, 0, client.count("kiosk/state"))

		client.mu.Lock()
		client.err = nil
		client.mu.Unlock()

		require.NoError(t, svc.Stop())
		synctest.Wait()
		state := decode[statePayload](t, client.last(t, "kiosk/state"))
		assert.Equal(t, "idle", state.State)

		require.NoError(t, svc.Close())
		<-done
	})
}

func TestNewPublisher_Defaults(t *testing.T) {
	qos := 0
	retain := false
	pub := NewPublisher(&fakeClient{}, config.MQTTConfig{TopicPrefix: "x", QoS: &qos, Retain: &retain})
	assert.Equal(t, byte(0), pub.qos)
	assert.False(t, pub.retain)

	pub = NewPublisher(&fakeClient{}, config.MQTTConfig{TopicPrefix: "x"})
	assert.Equal(t, byte(1), pub.qos)
	assert.True(t, pub.retain)
}

func TestPahoClient_PublishValidation(t *testing.T) {
	c := &PahoClient{}
	assert.ErrorIs(t, c.Publish("", nil, 0, false), ErrInvalidTopic)
	assert.ErrorIs(t, c.Publish("t", nil, 3, false), ErrInvalidQoS)
	assert.NoError(t, c.Close())
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Username = "kiosk"
	cfg.Password = "secret"
	opts := buildClientOptions(cfg)
	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "localhost:1883", opts.Servers[0].Host)
	assert.Equal(t, "mediastore", opts.ClientID)
	assert.Equal(t, "kiosk", opts.Username)
	assert.True(t, opts.AutoReconnect)
	assert.True(t, opts.CleanSession)
}
