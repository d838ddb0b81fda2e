package llm

import (
	"net"
	"net/http"
	"time"

	"aitools/internal/infra/config"
)

// Pool and timeout defaults. Tools talk to a handful of API hosts, so a
// small pool of long-lived connections is enough.
const (
	defaultMaxIdleConns        = 20
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 20
	defaultIdleConnTimeout     = 120 * time.Second
	defaultConnTimeout         = 30 * time.Second
	defaultRespTimeout         = 120 * time.Second
	tlsHandshakeTimeout        = 10 * time.Second
	keepAlive                  = 30 * time.Second
)

// positive returns v when it is set, otherwise def.
func positive[T int | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

// NewPooledTransport builds the transport behind every provider client.
func NewPooledTransport(connTimeout, respTimeout time.Duration, pool config.PoolConfig) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   positive(connTimeout, defaultConnTimeout),
		KeepAlive: keepAlive,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ResponseHeaderTimeout: positive(respTimeout, defaultRespTimeout),
		MaxIdleConns:          positive(pool.MaxIdleConns, defaultMaxIdleConns),
		MaxIdleConnsPerHost:   positive(pool.MaxIdleConnsPerHost, defaultMaxIdleConnsPerHost),
		MaxConnsPerHost:       positive(pool.MaxConnsPerHost, defaultMaxConnsPerHost),
		IdleConnTimeout:       positive(pool.IdleConnTimeout, defaultIdleConnTimeout),
		ForceAttemptHTTP2:     true,
	}
}

// NewHTTPClient returns a pooled client whose overall timeout covers
// connecting plus waiting for the response. The image backend shares it.
func NewHTTPClient(cfg config.ProviderConfig) *http.Client {
	conn := positive(cfg.ConnTimeout, defaultConnTimeout)
	resp := positive(cfg.RespTimeout, defaultRespTimeout)
	return &http.Client{
		Transport: NewPooledTransport(conn, resp, cfg.Pool),
		Timeout:   conn + resp,
	}
}
