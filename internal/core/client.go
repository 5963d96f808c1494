package core

// Client is a connected chat participant as seen by the core layer.
// The transport feeds Commands and drains Events; the hub owns
// everything else about the connection.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	// closed by the hub when the client is unregistered
	done chan struct{}
}

// NewClient constructs a client with initialized channels. The id is an
// opaque connection identifier chosen by the transport.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
		done:     make(chan struct{}),
	}
}

// Done is closed once the hub has unregistered the client. Transport
// write loops and replay goroutines use it to stop without leaking.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
