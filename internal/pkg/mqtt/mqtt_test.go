package mqtt

import (
	"context"
	"testing"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeClient struct {
	paho_mqtt.Client

	connected bool
	published []string
	handlers  map[string]paho_mqtt.MessageHandler
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho_mqtt.Token {
	c.published = append(c.published, string(payload.([]byte)))
	return &fakeToken{}
}

func (c *fakeClient) Subscribe(topic string, qos byte, callback paho_mqtt.MessageHandler) paho_mqtt.Token {
	if c.handlers == nil {
		c.handlers = map[string]paho_mqtt.MessageHandler{}
	}
	c.handlers[topic] = callback
	return &fakeToken{}
}

func (c *fakeClient) Unsubscribe(topics ...string) paho_mqtt.Token { return &fakeToken{} }

type fakeMessage struct {
	paho_mqtt.Message

	topic   string
	payload []byte
}

func (m *fakeMessage) Topic() string   { return m.topic }
func (m *fakeMessage) Payload() []byte { return m.payload }

func newTestService(t *testing.T, client paho_mqtt.Client) *service {
	t.Helper()
	original := zap.L()
	zap.ReplaceGlobals(zaptest.NewLogger(t))
	t.Cleanup(func() { zap.ReplaceGlobals(original) })
	return New(client, "status", make(chan error, 16))
}

func TestPublish_WhenConnected(t *testing.T) {
	client := &fakeClient{connected: true}
	s := newTestService(t, client)

	require.NoError(t, s.Publish("Pi Booting"))
	assert.Equal(t, []string{"Pi Booting"}, client.published)
}

func TestPublish_DroppedWhenDisconnected(t *testing.T) {
	client := &fakeClient{connected: false}
	s := newTestService(t, client)

	assert.ErrorIs(t, s.Publish("Pi Booting"), ErrLinkUnavailable)
	assert.Empty(t, client.published)
}

func TestSubscribe_ForwardsPayloads(t *testing.T) {
	client := &fakeClient{connected: true}
	s := newTestService(t, client)

	out := make(chan string, 4)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Subscribe(ctx, []string{"commands", "status"}, out)
	}()

	require.Eventually(t, func() bool {
		return len(client.handlers) == 2
	}, time.Second, 10*time.Millisecond)

	client.handlers["commands"](client, &fakeMessage{topic: "commands", payload: []byte("102")})
	assert.Equal(t, "102", <-out)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestSubscribe_DropsWhenBacklogFull(t *testing.T) {
	client := &fakeClient{connected: true}
	errChan := make(chan error, 1)

	original := zap.L()
	zap.ReplaceGlobals(zaptest.NewLogger(t))
	t.Cleanup(func() { zap.ReplaceGlobals(original) })
	s := New(client, "status", errChan)

	out := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = s.Subscribe(ctx, []string{"commands"}, out) }()
	require.Eventually(t, func() bool {
		return len(client.handlers) == 1
	}, time.Second, 10*time.Millisecond)

	client.handlers["commands"](client, &fakeMessage{topic: "commands", payload: []byte("101")})
	client.handlers["commands"](client, &fakeMessage{topic: "commands", payload: []byte("102")})

	assert.Equal(t, "101", <-out)
	assert.Error(t, <-errChan)
}
