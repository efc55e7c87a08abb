package host

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// Sink is a destination for inspector-bound messages. Sends are
// fire-and-forget; the inspector may be gone at any time.
type Sink interface {
	Send(v any) error
}

// Handler receives events delivered by the host runtime.
type Handler interface {
	OnProperties(properties []byte)
	OnInspectorOpen(ins Sink)
	OnInspectorClose()
	OnInspectorMessage(ins Sink, message []byte)
	OnTileClicked(actionID string, properties []byte)
}

// Client is the plugin's connection to the host runtime.
type Client struct {
	url      string
	pluginID string

	writeMu sync.Mutex
	conn    *websocket.Conn
}

func NewClient(url, pluginID string) *Client {
	return &Client{url: url, pluginID: pluginID}
}

// Connect dials the runtime, registers the plugin and requests the stored
// properties. The PROPERTIES reply arrives through the Run loop.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial host runtime: %w", err)
	}
	c.conn = conn

	if err := c.write(outEnvelope{Type: MsgRegisterPlugin, PluginID: c.pluginID}); err != nil {
		conn.Close()
		return err
	}
	if err := c.write(outEnvelope{Type: MsgGetProperties}); err != nil {
		conn.Close()
		return err
	}
	return nil
}

// Run reads runtime messages and dispatches them to h until the context
// is cancelled or the connection fails. Unknown message types are skipped.
func (c *Client) Run(ctx context.Context, h Handler) error {
	go func() {
		<-ctx.Done()
		c.conn.Close()
	}()

	for {
		var env envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("host runtime read: %w", err)
		}

		switch env.Type {
		case MsgRegistered:
			log.Printf("registered with host runtime as %s", c.pluginID)
		case MsgProperties:
			h.OnProperties(env.Properties)
		case MsgInspectorOpen:
			h.OnInspectorOpen(&Inspector{client: c, ctx: env.Inspector})
		case MsgInspectorClose:
			h.OnInspectorClose()
		case MsgRecvFromInspector:
			h.OnInspectorMessage(&Inspector{client: c, ctx: env.Inspector}, env.Message)
		case MsgTileClicked:
			h.OnTileClicked(env.ActionID, env.Properties)
		default:
			// Not for us.
		}
	}
}

// SetProperties writes the plugin properties back to the host store.
func (c *Client) SetProperties(properties any) error {
	return c.write(outEnvelope{Type: MsgSetProperties, Properties: properties})
}

func (c *Client) write(env outEnvelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("host runtime write: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Inspector addresses one open inspector window.
type Inspector struct {
	client *Client
	ctx    string
}

func (i *Inspector) Send(v any) error {
	return i.client.write(outEnvelope{Type: MsgSendToInspector, Inspector: i.ctx, Message: v})
}
