// Command noxquery is a standalone debug CLI: it sends one query over UDP
// and prints the decoded reply using the wire codec, independent of the
// proxy's responder pipeline.
//
// Grounded on the teacher's cmd/dnsquery/main.go (flag-based CLI, queryUDP/
// buildQuery/formatRR shape), rebuilt on internal/wire instead of the
// teacher's internal/dns.
package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pinedrop/noxdns/internal/wire"
)

func main() {
	var (
		server   = flag.String("server", "8.8.8.8:53", "DNS server HOST:PORT")
		name     = flag.String("name", "example.com", "Query name")
		qtype    = flag.Uint("qtype", 1, "Query type (numeric, A=1, AAAA=28)")
		timeout  = flag.Duration("timeout", 2*time.Second, "Timeout")
		recvSize = flag.Int("recv-size", 1024, "UDP receive buffer size")
		quiet    = flag.Bool("quiet", false, "Suppress output (exit status indicates success)")
	)
	flag.Parse()

	resp, err := queryUDP(*server, *name, uint16(*qtype), *timeout, *recvSize)
	if err != nil {
		if !*quiet {
			fmt.Fprintf(os.Stderr, "noxquery error: %v\n", err)
		}
		os.Exit(1)
	}
	if *quiet {
		return
	}

	dg, err := wire.DecodeDatagram(resp)
	if err != nil {
		fmt.Printf("received %d bytes (unparseable: %v)\n", len(resp), err)
		return
	}

	fmt.Printf("id=%d rcode=%d qr=%v answers=%d authorities=%d additionals=%d\n",
		dg.Header.ID,
		dg.Header.RCode(),
		dg.Header.QR(),
		len(dg.Answers),
		len(dg.Authorities),
		len(dg.Additionals),
	)

	rows := make([]string, 0, len(dg.Answers))
	for _, rr := range dg.Answers {
		rows = append(rows, formatRR(rr))
	}
	sort.Strings(rows)
	for _, s := range rows {
		fmt.Println(s)
	}
}

func queryUDP(server, name string, qtype uint16, timeout time.Duration, recvSize int) ([]byte, error) {
	addr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	reqBytes, err := buildQuery(name, qtype)
	if err != nil {
		return nil, err
	}
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	if _, err := conn.Write(reqBytes); err != nil {
		return nil, err
	}

	buf := make([]byte, recvSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func buildQuery(name string, qtype uint16) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("name required")
	}
	qname, err := wire.ParseName(strings.TrimSuffix(name, "."))
	if err != nil {
		return nil, fmt.Errorf("invalid name %q: %w", name, err)
	}

	h := wire.NewQuery()
	h.SetRD(true)
	dg := wire.Datagram{
		Header:    h,
		Questions: []wire.Question{{Name: qname, Type: qtype, Class: uint16(wire.ClassIN)}},
	}
	return dg.Marshal()
}

func formatRR(rr wire.ResourceRecord) string {
	name := rr.Name.String()
	if name == "" {
		name = "."
	}
	switch wire.RecordType(rr.Type) {
	case wire.TypeA:
		if len(rr.RData) == 4 {
			return fmt.Sprintf("%s %d IN A %d.%d.%d.%d", name, rr.TTL, rr.RData[0], rr.RData[1], rr.RData[2], rr.RData[3])
		}
	case wire.TypeAAAA:
		if len(rr.RData) == 16 {
			ip := net.IP(rr.RData)
			return fmt.Sprintf("%s %d IN AAAA %s", name, rr.TTL, ip.String())
		}
	}
	return fmt.Sprintf("%s %d IN TYPE%d (%d bytes, unparsed)", name, rr.TTL, rr.Type, len(rr.RData))
}
