package utils

import (
	"net"
	"net/http"
	"time"
)

// GlobalHTTPClient is the shared pooled client for all outbound HTTP:
// judge calls, webhook logging and attachment head fetches. The judge
// endpoint and the Discord CDN are the only hot hosts, so idle
// connections per host stay small.
var GlobalHTTPClient *http.Client

func init() {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   10,
	}

	GlobalHTTPClient = &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}
