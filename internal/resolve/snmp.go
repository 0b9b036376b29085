package resolve

import (
	"context"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	scanerrors "github.com/anstrom/rangescan/internal/errors"
)

const (
	resolverSNMP = "snmp"

	// sysNameOID is SNMPv2-MIB::sysName.0.
	sysNameOID = ".1.3.6.1.2.1.1.5.0"
)

// SNMPResolver asks the host itself for its sysName over SNMPv2c. Printers,
// switches and access points often have no PTR record but answer this.
type SNMPResolver struct {
	community string
	port      uint16
	timeout   time.Duration
}

// NewSNMPResolver creates an SNMP sysName resolver.
func NewSNMPResolver(community string, port uint16, timeout time.Duration) *SNMPResolver {
	return &SNMPResolver{community: community, port: port, timeout: timeout}
}

// ResolveName implements Resolver.
func (r *SNMPResolver) ResolveName(ctx context.Context, address string) string {
	name, err := r.lookup(ctx, address)
	return collapse(resolverSNMP, address, name, err)
}

func (r *SNMPResolver) client(ctx context.Context, address string) *gosnmp.GoSNMP {
	return &gosnmp.GoSNMP{
		Target:    address,
		Port:      r.port,
		Community: r.community,
		Version:   gosnmp.Version2c,
		Timeout:   r.timeout,
		Retries:   0,
		Context:   ctx,
	}
}

func (r *SNMPResolver) lookup(ctx context.Context, address string) (string, error) {
	client := r.client(ctx, address)
	if err := client.Connect(); err != nil {
		return "", scanerrors.WrapResolveError("", "SNMP connect failed", resolverSNMP, address, err)
	}
	defer client.Conn.Close()

	packet, err := client.Get([]string{sysNameOID})
	if err != nil {
		return "", scanerrors.WrapResolveError("", "SNMP get failed", resolverSNMP, address, err)
	}

	for _, variable := range packet.Variables {
		if variable.Type != gosnmp.OctetString {
			continue
		}
		raw, ok := variable.Value.([]byte)
		if !ok {
			continue
		}
		if name := strings.TrimSpace(string(raw)); name != "" {
			return name, nil
		}
	}
	return "", scanerrors.ErrNoRecord(resolverSNMP, address)
}
