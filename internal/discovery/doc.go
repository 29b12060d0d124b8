// Package discovery provides mDNS-based discovery for prep recipe services.
//
// Recipe services advertise themselves with the "_prep._tcp" service type and
// a "path" TXT record naming the API prefix. The client uses this package to
// find a service when no base URL is configured, and prep-server uses
// Advertise to announce itself.
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Broadcasts mDNS queries for "_prep._tcp" on the local network
//  2. Collects answers until the timeout, one Service per instance name
//  3. Prefers IPv4 addresses and skips entries with no address at all
//
// # Usage Example
//
//	services, err := discovery.Scan(ctx, 5*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, svc := range services {
//	    fmt.Println(svc.Instance, svc.BaseURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Client and service must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// Each Scan or FindFirst call uses its own resolver, so multiple discovery
// sessions can run simultaneously without interference.
package discovery
