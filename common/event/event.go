package event

import (
	"fmt"
	messagebus "github.com/vardius/message-bus"
	"sync"
	"vincit.fi/photo-frame/api"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/common/logger"
)

// Broker delivers commands to subscribers asynchronously. Each subscriber
// has its own queue and handles commands one at a time in publish order.
type Broker struct {
	bus    messagebus.MessageBus
	mux    sync.Mutex
	topics map[api.Topic]bool

	api.Sender
}

func InitBus(queueSize int) *Broker {
	return &Broker{
		bus:    messagebus.New(queueSize),
		topics: map[api.Topic]bool{},
	}
}

func (s *Broker) Subscribe(topic api.Topic, fn interface{}) error {
	if err := s.bus.Subscribe(string(topic), fn); err != nil {
		return fmt.Errorf("could not subscribe to '%s': %w", topic, err)
	}
	s.mux.Lock()
	s.topics[topic] = true
	s.mux.Unlock()
	logger.Trace.Printf("Subscribed to '%s'", topic)
	return nil
}

func (s *Broker) SendToTopic(topic api.Topic) {
	logger.Trace.Printf("Sending to '%s'", topic)
	s.bus.Publish(string(topic))
}

func (s *Broker) SendCommandToTopic(topic api.Topic, command apitype.Command) {
	logger.Trace.Printf("Sending command to '%s'", topic)
	s.bus.Publish(string(topic), command)
}

func (s *Broker) SendError(message string, err error) {
	formattedMessage := message
	if err != nil {
		formattedMessage = fmt.Sprintf("%s: %s", message, err.Error())
	}
	logger.Error.Printf("Error: %s", formattedMessage)
	s.SendCommandToTopic(api.ShowError, &api.ErrorCommand{Message: formattedMessage})
}

// Close unsubscribes every topic. Commands already queued are still
// delivered asynchronously after Close returns.
func (s *Broker) Close() {
	s.mux.Lock()
	defer s.mux.Unlock()
	for topic := range s.topics {
		s.bus.Close(string(topic))
	}
	s.topics = map[api.Topic]bool{}
}
