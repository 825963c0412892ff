// Package osc sends Open Sound Control messages over UDP.
package osc

import (
	"context"
	"net"
	"sync"

	"github.com/pkg/errors"
	scosc "github.com/scgolang/osc"
)

// Client sends OSC messages, keeping one UDP connection per destination.
// Connections are dialed lazily on first send and reused after that.
type Client struct {
	mu    sync.Mutex
	conns map[string]scosc.Conn
}

// NewClient creates an OSC client.
func NewClient() *Client {
	return &Client{conns: make(map[string]scosc.Conn)}
}

// conn returns the connection for host:port, dialing it if needed.
func (c *Client) conn(host, port string) (scosc.Conn, error) {
	key := net.JoinHostPort(host, port)

	c.mu.Lock()
	defer c.mu.Unlock()
	if conn, ok := c.conns[key]; ok {
		return conn, nil
	}

	laddr, err := net.ResolveUDPAddr("udp", "0.0.0.0:0")
	if err != nil {
		return nil, errors.Wrap(err, "resolving local address")
	}
	raddr, err := net.ResolveUDPAddr("udp", key)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", key)
	}
	conn, err := scosc.DialUDPContext(context.Background(), "udp", laddr, raddr)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", key)
	}
	c.conns[key] = conn
	return conn, nil
}

// SendFloat sends a single float32 argument to the given address.
func (c *Client) SendFloat(host, port, address string, value float32) error {
	conn, err := c.conn(host, port)
	if err != nil {
		return err
	}
	return errors.Wrapf(conn.Send(scosc.Message{
		Address: address,
		Arguments: scosc.Arguments{
			scosc.Float(value),
		},
	}), "sending %s", address)
}

// SendPresetToggle announces a preset state change as
// (string id, string name, int32 0|1).
func (c *Client) SendPresetToggle(host, port, address, presetID, presetName string, on bool) error {
	conn, err := c.conn(host, port)
	if err != nil {
		return err
	}
	state := int32(0)
	if on {
		state = 1
	}
	return errors.Wrapf(conn.Send(scosc.Message{
		Address: address,
		Arguments: scosc.Arguments{
			scosc.String(presetID),
			scosc.String(presetName),
			scosc.Int(state),
		},
	}), "sending %s", address)
}

// Close closes every open connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, conn := range c.conns {
		conn.Close()
		delete(c.conns, key)
	}
}
