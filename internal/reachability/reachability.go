package reachability

import (
	"context"
	"net"
	"time"

	"golang.org/x/sync/singleflight"
)

// Probe answers whether the network looks reachable.
type Probe interface {
	Reachable(ctx context.Context) bool
}

// Static is a Probe with a fixed answer.
type Static bool

func (s Static) Reachable(context.Context) bool { return bool(s) }

// Dialer opens network connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// DialProbe reports the network reachable when a TCP connection to addr
// can be opened within timeout. The zero value always answers reachable;
// use NewDialProbe.
type DialProbe struct {
	addr    string
	timeout time.Duration
	dialer  Dialer

	// coalesce concurrent probes, several failures are often reported at once
	sf singleflight.Group
}

func NewDialProbe(addr string, timeout time.Duration) *DialProbe {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &DialProbe{addr: addr, timeout: timeout, dialer: &net.Dialer{}}
}

// Reachable dials addr. Only the probe timeout bounds the dial: the caller's
// context is often the one of a request that just timed out.
func (p *DialProbe) Reachable(ctx context.Context) bool {
	if p.addr == "" {
		return true
	}
	v, _, _ := p.sf.Do(p.addr, func() (any, error) {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
		conn, err := p.dialer.DialContext(dctx, "tcp", p.addr)
		if err != nil {
			return false, nil
		}
		_ = conn.Close()
		return true, nil
	})
	return v.(bool)
}
