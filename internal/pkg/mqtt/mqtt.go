package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/rrotella/groundlink/internal/pkg/config"
)

// ErrLinkUnavailable means the bus session is down. Status publishes hitting
// it are dropped by the caller, never buffered.
var ErrLinkUnavailable = errors.New("bus session unavailable")

type service struct {
	client      paho_mqtt.Client
	statusTopic string
	errChan     chan error
	logger      *zap.Logger
}

// NewClient builds a paho client from config. The connection itself is
// established by Connect.
func NewClient(cfg *config.MqttConfig) paho_mqtt.Client {
	opts := paho_mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Host))
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	return paho_mqtt.NewClient(opts)
}

func New(client paho_mqtt.Client, statusTopic string, errChan chan error) *service {
	return &service{
		client:      client,
		statusTopic: statusTopic,
		errChan:     errChan,
		logger:      zap.L(), // returns the global logger.
	}
}

// Connect establishes the broker session, retrying with exponential backoff.
func (s *service) Connect() error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	return backoff.Retry(func() error {
		token := s.client.Connect()
		if !token.WaitTimeout(5 * time.Second) {
			return errors.New("unable to connect in time")
		}
		if err := token.Error(); err != nil {
			s.logger.Warn("mqtt connect failed, retrying", zap.Error(err))
			return err
		}
		return nil
	}, bo)
}

// Subscribe forwards the payload of every message on topics to out and
// blocks until the context is done. A full out channel drops the message;
// per-medium arrival order is preserved for everything that fits.
func (s *service) Subscribe(ctx context.Context, topics []string, out chan<- string) error {
	for _, topic := range topics {
		token := s.client.Subscribe(topic, 0, func(_ paho_mqtt.Client, msg paho_mqtt.Message) {
			select {
			case out <- string(msg.Payload()):
			default:
				s.errChan <- fmt.Errorf("bus backlog full, dropped message on %s", msg.Topic())
			}
		})
		if token.Wait() && token.Error() != nil {
			return token.Error()
		}
		s.logger.Info("subscribed", zap.String("topic", topic))
	}

	<-ctx.Done()

	for _, topic := range topics {
		s.client.Unsubscribe(topic)
	}
	return ctx.Err()
}

func (s *service) Disconnect() {
	if s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}
