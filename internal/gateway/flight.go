package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"
)

// Flight deduplicates identical in-flight gateway calls within one unit of
// work (typically one console request). Calls with the same operation,
// params, and operator collapse to a single network call whose result every
// waiter shares. This is an optimization: callers that skip the Flight and
// hit the Client directly lose nothing but the dedupe.
//
// Cancellation is shared: the underlying call runs under the first waiter's
// context, so cancelling one waiter does not abort the others' result.
type Flight struct {
	client *Client
	group  singleflight.Group
}

func NewFlight(client *Client) *Flight {
	return &Flight{client: client}
}

// Call dispatches through the dedupe group.
func (f *Flight) Call(ctx context.Context, operation string, params any, opts Options) (json.RawMessage, error) {
	key, ok := requestKey(operation, params, opts)
	if !ok {
		// Unkeyable params: fall through without dedupe.
		return f.client.Call(ctx, operation, params, opts)
	}
	v, err, _ := f.group.Do(key, func() (any, error) {
		return f.client.Call(ctx, operation, params, opts)
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

// requestKey derives the canonical dedupe key for one call.
func requestKey(operation string, params any, opts Options) (string, bool) {
	encoded, err := json.Marshal(params)
	if err != nil {
		return "", false
	}
	h := sha256.New()
	h.Write([]byte(operation))
	h.Write([]byte{0})
	h.Write([]byte(opts.OperatorID))
	h.Write([]byte{0})
	h.Write([]byte(opts.Country))
	h.Write([]byte{0})
	h.Write(encoded)
	return hex.EncodeToString(h.Sum(nil)), true
}

const flightKey = "gateway_flight"

// Middleware installs a request-scoped Flight on the gin context. The
// dedupe scope is explicitly the one request; nothing is shared across
// requests.
func Middleware(client *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(flightKey, NewFlight(client))
		c.Next()
	}
}

// FlightFrom returns the request-scoped Flight, or a fresh one when the
// middleware is not installed (no dedupe, same semantics).
func FlightFrom(c *gin.Context, client *Client) *Flight {
	if v, ok := c.Get(flightKey); ok {
		if f, ok := v.(*Flight); ok && f != nil {
			return f
		}
	}
	return NewFlight(client)
}
