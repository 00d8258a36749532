package daemon

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

// Client is a synchronous connection to the daemon socket. Not safe for
// concurrent use; open one per caller.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
	enc  *json.Encoder
}

func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 3*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dial daemon at %s: %w", path, err)
	}
	return &Client{conn: conn, r: bufio.NewReader(conn), enc: json.NewEncoder(conn)}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Do sends one command and waits for its response. A response with OK unset
// surfaces as an error.
func (c *Client) Do(op string, data any) (json.RawMessage, error) {
	cmd := Command{Op: op}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		cmd.Data = raw
	}

	if err := c.enc.Encode(cmd); err != nil {
		return nil, fmt.Errorf("send %s: %w", op, err)
	}

	line, err := c.r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", op, err)
	}
	if !resp.OK {
		if resp.Error == "" {
			return nil, errors.New("daemon refused the command")
		}
		return nil, errors.New(resp.Error)
	}
	return resp.Data, nil
}

// DoInto runs Do and unmarshals the payload into dst.
func (c *Client) DoInto(op string, data, dst any) error {
	raw, err := c.Do(op, data)
	if err != nil {
		return err
	}
	if dst == nil {
		return nil
	}
	if len(raw) == 0 {
		return fmt.Errorf("%s returned no data", op)
	}
	return json.Unmarshal(raw, dst)
}
