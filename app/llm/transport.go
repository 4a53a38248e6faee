package llm

import (
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

// newTransport returns an HTTP transport that reaches the API directly or
// through proxyAddr. http(s) proxies use CONNECT; socks proxies dial
// through golang.org/x/net/proxy.
func newTransport(proxyAddr string) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyAddr == "" {
		return transport, nil
	}

	u, err := url.Parse(proxyAddr)
	if err != nil {
		return nil, fmt.Errorf("parse proxy address: %w", err)
	}
	if u.Scheme == "socks" {
		u.Scheme = "socks5"
	}

	switch u.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
		return transport, nil
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("create proxy dialer: %w", err)
		}
		contextDialer, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("proxy dialer for %s does not support contexts", u.Scheme)
		}
		transport.Proxy = nil
		transport.DialContext = contextDialer.DialContext
		return transport, nil
	}
	return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
}
