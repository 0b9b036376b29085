package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/miekg/dns"

	scanerrors "github.com/anstrom/rangescan/internal/errors"
)

const resolverDNS = "dns"

// DNSResolver sends PTR queries straight to one nameserver, bypassing the
// system resolver configuration.
type DNSResolver struct {
	server string
	client *dns.Client
}

// NewDNSResolver creates a resolver for server ("host:port").
func NewDNSResolver(server string, timeout time.Duration) *DNSResolver {
	return &DNSResolver{
		server: server,
		client: &dns.Client{Net: "udp", Timeout: timeout},
	}
}

// ResolveName implements Resolver.
func (r *DNSResolver) ResolveName(ctx context.Context, address string) string {
	name, err := r.lookup(ctx, address)
	return collapse(resolverDNS, address, name, err)
}

func (r *DNSResolver) lookup(ctx context.Context, address string) (string, error) {
	arpa, err := dns.ReverseAddr(address)
	if err != nil {
		return "", scanerrors.WrapResolveError(scanerrors.CodeResolveFailed, "Invalid address", resolverDNS, address, err)
	}

	msg := new(dns.Msg)
	msg.SetQuestion(arpa, dns.TypePTR)
	msg.RecursionDesired = true

	ctx, cancel := context.WithTimeout(ctx, r.client.Timeout)
	defer cancel()

	in, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return "", scanerrors.WrapResolveError("", "PTR query failed", resolverDNS, address, err)
	}

	switch in.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return "", scanerrors.ErrNoRecord(resolverDNS, address)
	default:
		return "", scanerrors.NewResolveError(scanerrors.CodeResolveFailed,
			fmt.Sprintf("PTR query returned %s", dns.RcodeToString[in.Rcode]), resolverDNS, address)
	}

	for _, rr := range in.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			if name := normalizeName(ptr.Ptr); name != "" {
				return name, nil
			}
		}
	}
	return "", scanerrors.ErrNoRecord(resolverDNS, address)
}
