package discovery

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	consts "github.com/khanhnv2901/sanscout/internal/shared/constants"
)

// LookupFunc resolves a hostname to a single IPv4 address string.
type LookupFunc func(ctx context.Context, host string) (string, error)

// ResolverCache memoizes forward lookups so each distinct SAN value costs at
// most one DNS query per run, no matter how many certificates repeat it.
// Entries are write-once: a cached value, including a cached failure, is
// never recomputed. Safe for concurrent use.
type ResolverCache struct {
	Timeout     time.Duration
	Nameservers []string   // Optional custom nameservers
	Lookup      LookupFunc // Overrides the default resolver when set

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	addr string
}

// NewResolverCache builds a cache using the given per-lookup timeout and
// optional nameservers.
func NewResolverCache(timeout time.Duration, nameservers []string) *ResolverCache {
	return &ResolverCache{
		Timeout:     timeout,
		Nameservers: nameservers,
		entries:     make(map[string]*cacheEntry),
	}
}

// Resolve maps a SAN entry to an address string. Wildcard patterns are never
// resolvable to a single address and short-circuit to UnresolvedAddr without
// touching the cache or the network. Lookup failures are cached as
// UnresolvedAddr so the same failing name is only queried once.
func (c *ResolverCache) Resolve(ctx context.Context, name string) string {
	if strings.Contains(name, "*") {
		return UnresolvedAddr
	}

	c.mu.Lock()
	if c.entries == nil {
		c.entries = make(map[string]*cacheEntry)
	}
	entry, ok := c.entries[name]
	if !ok {
		entry = &cacheEntry{}
		c.entries[name] = entry
	}
	c.mu.Unlock()

	// sync.Once gives at-most-once resolution per key even when several
	// workers hit the same SAN concurrently.
	entry.once.Do(func() {
		entry.addr = c.lookup(ctx, name)
	})
	return entry.addr
}

// Len reports how many names have a cache entry.
func (c *ResolverCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ResolverCache) lookup(ctx context.Context, name string) string {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = consts.DefaultNetworkTimeout
	}

	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lookup := c.Lookup
	if lookup == nil {
		lookup = c.resolverLookup
	}

	addr, err := lookup(lookupCtx, name)
	if err != nil || addr == "" {
		return UnresolvedAddr
	}
	return addr
}

// resolverLookup performs a forward A-record lookup and returns the first
// answer, mirroring classic gethostbyname behavior.
func (c *ResolverCache) resolverLookup(ctx context.Context, host string) (string, error) {
	resolver := &net.Resolver{
		PreferGo: true,
	}

	// If custom nameservers provided, use them
	if len(c.Nameservers) > 0 {
		dialer := &net.Dialer{
			Timeout: c.Timeout,
		}
		resolver.Dial = func(ctx context.Context, network, address string) (net.Conn, error) {
			// Use first nameserver for now
			return dialer.DialContext(ctx, network, c.Nameservers[0])
		}
	}

	ips, err := resolver.LookupIP(ctx, "ip4", host)
	if err != nil {
		return "", err
	}
	if len(ips) == 0 {
		return "", fmt.Errorf("no A records for %s", host)
	}
	return ips[0].String(), nil
}
