package mqtt

// Client publishes telemetry messages to a broker.
type Client interface {
	// Publish sends payload on topic. Retained messages are kept by the
	// broker for late subscribers.
	Publish(topic string, retained bool, payload []byte) error

	// Disconnect closes the connection after pending messages are sent.
	Disconnect()
}
