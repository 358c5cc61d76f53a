package target

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/projectdiscovery/mapcidr"
	"github.com/robgonnella/portsweep/internal/exception"
)

//go:generate mockgen -destination=../mock/target/mock_target.go -package=mock_target . Resolver

// Resolver looks up the addresses of a host. *net.Resolver implements it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Expand turns user provided targets into individual hosts. CIDR blocks are
// expanded to every address they contain, duplicates are removed and order
// is preserved.
func Expand(targets ...string) ([]string, error) {
	hosts := []string{}
	seen := map[string]struct{}{}

	add := func(h string) {
		if _, ok := seen[h]; ok {
			return
		}

		seen[h] = struct{}{}
		hosts = append(hosts, h)
	}

	for _, t := range targets {
		t = strings.TrimSpace(t)

		if t == "" {
			return nil, exception.NewInputError("target", "target cannot be empty")
		}

		if !strings.Contains(t, "/") {
			add(t)
			continue
		}

		ips, err := mapcidr.IPAddresses(t)

		if err != nil {
			return nil, exception.NewInputError("target", fmt.Sprintf("%s: %s", t, err))
		}

		for _, ip := range ips {
			add(ip)
		}
	}

	if len(hosts) == 0 {
		return nil, exception.ErrNoTarget
	}

	return hosts, nil
}

// Resolve returns a single address for host, preferring IPv4. IP literals are
// returned without a lookup.
func Resolve(ctx context.Context, r Resolver, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}

	addrs, err := r.LookupHost(ctx, host)

	if err != nil {
		return "", exception.NewInputError("target", fmt.Sprintf("failed to resolve %s: %s", host, err))
	}

	for _, addr := range addrs {
		if ip := net.ParseIP(addr); ip != nil && ip.To4() != nil {
			return ip.String(), nil
		}
	}

	if len(addrs) == 0 {
		return "", exception.NewInputError("target", "no addresses found for "+host)
	}

	return addrs[0], nil
}
