package chart

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
)

var errBlockedAddress = errors.New("address is not publicly routable")

// sharedAddressSpace is the carrier-grade NAT range (RFC 6598).
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func blockedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return !addr.IsValid() ||
		addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		sharedAddressSpace.Contains(addr)
}

// checkPublicHost rejects URLs naming localhost or a literal non-public IP.
// Hostnames that resolve to such addresses are caught at dial time.
func checkPublicHost(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("%w: invalid url: %v", ErrInvalidURL, err)
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return fmt.Errorf("%w: %s: %w", ErrInvalidURL, host, errBlockedAddress)
	}
	if addr, err := netip.ParseAddr(host); err == nil && blockedAddr(addr) {
		return fmt.Errorf("%w: %s: %w", ErrInvalidURL, host, errBlockedAddress)
	}
	return nil
}

func dialControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil || blockedAddr(addr) {
		return fmt.Errorf("%w: %s", errBlockedAddress, host)
	}
	return nil
}

// NewHTTPClient returns a client that refuses to connect to loopback,
// private, link-local and other non-public addresses, including after
// redirects and DNS resolution. Proxies from the environment are ignored.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
		Control:   dialControl,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: timeout, Transport: transport}
}
