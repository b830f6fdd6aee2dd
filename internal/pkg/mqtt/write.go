package mqtt

import (
	"time"
)

// Publish sends text on the status topic, best effort. ErrLinkUnavailable
// is returned while the session is down.
func (s *service) Publish(text string) error {
	if !s.client.IsConnected() {
		return ErrLinkUnavailable
	}
	token := s.client.Publish(s.statusTopic, 0, false, []byte(text))
	if res := token.WaitTimeout(10 * time.Second); res {
		return nil
	}
	return token.Error()
}
