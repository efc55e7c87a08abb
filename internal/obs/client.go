package obs

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	subprotocol    = "obswebsocket.json"
	requestTimeout = 30 * time.Second
)

// Client is a minimal obs-websocket v5 client. Request/response only; the
// plugin identifies with no event subscriptions, so events on the wire are
// skipped.
type Client struct {
	mu   sync.Mutex // serialises request round trips
	conn *websocket.Conn
}

// Dial opens and identifies a connection to the OBS websocket server.
// The context bounds the whole handshake. A wrong password surfaces as
// ErrAuthFailed, everything else as a transient dial error.
func Dial(ctx context.Context, host string, port int, password string) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: net.JoinHostPort(host, strconv.Itoa(port))}

	dialer := websocket.Dialer{Subprotocols: []string{subprotocol}}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Host, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	if err := identify(conn, password); err != nil {
		conn.Close()
		return nil, err
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	return &Client{conn: conn}, nil
}

// identify performs the Hello/Identify/Identified exchange, answering the
// auth challenge when the server presents one.
func identify(conn *websocket.Conn, password string) error {
	var hello helloData
	if err := readFrame(conn, opHello, &hello); err != nil {
		return fmt.Errorf("hello: %w", err)
	}

	ident := identifyData{RPCVersion: rpcVersion}
	if hello.Authentication != nil {
		ident.Authentication = authResponse(password, hello.Authentication.Salt, hello.Authentication.Challenge)
	}

	if err := conn.WriteJSON(outFrame{Op: opIdentify, D: ident}); err != nil {
		return fmt.Errorf("identify: %w", err)
	}

	if err := readFrame(conn, opIdentified, nil); err != nil {
		if websocket.IsCloseError(err, CloseAuthFailed) {
			return fmt.Errorf("identify: %w", ErrAuthFailed)
		}
		return fmt.Errorf("identified: %w", err)
	}

	return nil
}

// readFrame reads frames until one with the wanted opcode arrives,
// decoding its payload into out when out is non-nil.
func readFrame(conn *websocket.Conn, op int, out any) error {
	for {
		var f inFrame
		if err := conn.ReadJSON(&f); err != nil {
			return err
		}
		if f.Op != op {
			continue
		}
		if out == nil {
			return nil
		}
		return json.Unmarshal(f.D, out)
	}
}

// Request performs a single request/response round trip. Transport
// failures wrap ErrConnLost; a refusal from the server becomes a
// RequestError and leaves the connection usable.
func (c *Client) Request(requestType string, data, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.NewString()

	c.conn.SetWriteDeadline(time.Now().Add(requestTimeout))
	err := c.conn.WriteJSON(outFrame{Op: opRequest, D: requestData{
		RequestType: requestType,
		RequestID:   id,
		RequestData: data,
	}})
	if err != nil {
		return fmt.Errorf("send %s: %v: %w", requestType, err, ErrConnLost)
	}

	c.conn.SetReadDeadline(time.Now().Add(requestTimeout))
	for {
		var f inFrame
		if err := c.conn.ReadJSON(&f); err != nil {
			return fmt.Errorf("recv %s: %v: %w", requestType, err, ErrConnLost)
		}
		if f.Op != opRequestResponse {
			continue
		}

		var resp responseData
		if err := json.Unmarshal(f.D, &resp); err != nil {
			return fmt.Errorf("decode %s response: %w", requestType, err)
		}
		if resp.RequestID != id {
			continue
		}

		if !resp.RequestStatus.Result {
			return &RequestError{Code: resp.RequestStatus.Code, Comment: resp.RequestStatus.Comment}
		}
		if out != nil && len(resp.ResponseData) > 0 {
			return json.Unmarshal(resp.ResponseData, out)
		}
		return nil
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}
