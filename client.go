/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package tupledb

import (
	"context"
	"fmt"

	hcversion "github.com/hashicorp/go-version"

	"github/sabouaram/tupledb/logger"
	"github/sabouaram/tupledb/monitor"
	"github/sabouaram/tupledb/schema"
	"github/sabouaram/tupledb/transport"
)

// Client is the high-level tuple store client: one transport connection, one
// schema cache, and the discovery coalescer that fills it.
type Client struct {
	conn    *transport.Conn
	cache   *schema.Cache
	disc    *schema.Discoverer
	log     *logger.Logger
	cfg     Config
	metrics *monitor.Metrics
}

// UseMetrics attaches m as the client's Prometheus sink, forwarding to both
// the connection-health collectors and the per-operation request counter.
// Call before issuing operations; nil detaches metrics again.
func (c *Client) UseMetrics(m *monitor.Metrics) {
	c.metrics = m
	c.conn.UseMetrics(m)
}

// New validates cfg and builds a Client in the disconnected state. Call
// Connect to dial.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cache := schema.NewCache()
	if cfg.SpacesFile != "" {
		spaces, err := schema.LoadSpacesFile(cfg.SpacesFile)
		if err != nil {
			return nil, err
		}
		cache.Replace(spaces, 0)
	}

	conn := transport.New(cfg.Config, log)

	return &Client{
		conn:  conn,
		cache: cache,
		disc:  schema.NewDiscoverer(conn, cache),
		log:   log.With(map[string]interface{}{"component": "tupledb"}),
		cfg:   cfg,
	}, nil
}

// Connect dials the server and, unless a static SpacesFile was supplied,
// lets the first operation that needs a named lookup trigger discovery.
func (c *Client) Connect(ctx context.Context) error {
	return c.conn.Connect(ctx)
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ServerVersion returns the parsed greeting version of the current
// connection, or nil before a successful connect.
func (c *Client) ServerVersion() *hcversion.Version {
	return c.conn.ServerVersion()
}

// resolve turns a SpaceRef/IndexRef pair into the space/index descriptors and
// numeric ids a request needs. A space addressed purely by number is not
// looked up, so sp and idx are both nil and values go out uncoded. A named
// space with a numeric index id that discovery did not report yields a nil
// idx with a non-nil sp; encodeKey then codes the key against the space's
// positional field types.
func (c *Client) resolve(ctx context.Context, space SpaceRef, index IndexRef) (sp *schema.Space, idx *schema.Index, spaceID, indexID uint32, err error) {
	if !space.named {
		if index.named {
			return nil, nil, space.id, 0, fmt.Errorf("tupledb: cannot resolve a named index on a numeric-only space")
		}
		return nil, nil, space.id, index.id, nil
	}

	if err = c.disc.Ensure(ctx); err != nil {
		return nil, nil, 0, 0, err
	}

	sp, ok := c.cache.ByName(space.name)
	if !ok {
		return nil, nil, 0, 0, ErrorUnknownSpace.Error(fmt.Errorf("space %q", space.name))
	}

	if !index.named {
		idx = sp.IndexesByID[index.id]
		return sp, idx, sp.ID, index.id, nil
	}

	idx, ok = sp.Indexes[index.name]
	if !ok {
		return nil, nil, 0, 0, ErrorUnknownIndex.Error(fmt.Errorf("index %q on space %q", index.name, space.name))
	}
	return sp, idx, sp.ID, idx.ID, nil
}
