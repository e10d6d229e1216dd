package blocklist

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pinedrop/noxdns/internal/wire"
)

// Format selects how a blocklist source's lines are interpreted. Format is
// an additive, optional convenience (SPEC_FULL.md §3.1): every format
// ultimately calls Blocklist.Add with the same exact/wildcard semantics
// spec.md §4.5 and §6 define for the plain format.
type Format int

const (
	// FormatPlain is spec.md §6's format: "example.com" (exact) or
	// "*.tracker.net" (wildcard), one entry per line.
	FormatPlain Format = iota
	// FormatHosts is "0.0.0.0 domain" / "127.0.0.1 domain", exact-only.
	FormatHosts
	// FormatAdblock is "||domain^", blocking the domain and every
	// subdomain (encoded as one exact entry plus one wildcard entry).
	FormatAdblock
)

// LoadFile opens path and loads it as format into a new Blocklist. A
// missing file is not fatal (spec.md §7 BlocklistFileMissing): it logs and
// returns an empty, usable Blocklist.
func LoadFile(path string, format Format) (*Blocklist, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Error("blocklist file missing, continuing with empty blocklist", "path", path, "error", err)
			return New(), nil
		}
		return nil, fmt.Errorf("open blocklist file: %w", err)
	}
	defer f.Close()
	return Load(f, format)
}

// Load reads entries from r according to format.
func Load(r io.Reader, format Format) (*Blocklist, error) {
	bl := New()
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := loadLine(bl, line, format); err != nil {
			slog.Warn("skipping invalid blocklist line", "line", lineNo, "text", line, "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read blocklist: %w", err)
	}
	return bl, nil
}

func loadLine(bl *Blocklist, line string, format Format) error {
	switch format {
	case FormatHosts:
		return loadHostsLine(bl, line)
	case FormatAdblock:
		return loadAdblockLine(bl, line)
	default:
		return loadPlainLine(bl, line)
	}
}

// loadPlainLine implements spec.md §6: blank lines already skipped by the
// caller; a bare name matches exactly, a "*."-prefixed name matches any
// strict descendant of the remaining suffix.
func loadPlainLine(bl *Blocklist, line string) error {
	if strings.HasPrefix(line, "#") {
		return nil
	}
	wildcard := false
	if strings.HasPrefix(line, "*.") {
		wildcard = true
		line = strings.TrimPrefix(line, "*.")
	}
	name, err := wire.ParseName(line)
	if err != nil {
		return err
	}
	bl.Add(name, wildcard)
	return nil
}

func loadHostsLine(bl *Blocklist, line string) error {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil
	}
	ip := fields[0]
	if ip != "0.0.0.0" && ip != "127.0.0.1" {
		return nil
	}
	if fields[1] == "localhost" || fields[1] == "localhost.localdomain" {
		return nil
	}
	name, err := wire.ParseName(fields[1])
	if err != nil {
		return err
	}
	bl.Add(name, false)
	return nil
}

// loadAdblockLine parses "||domain^" (optionally "||domain^$options"). Real
// Adblock Plus semantics block the domain itself and every subdomain; since
// this trie's wildcard entries never match their own suffix (spec.md §9),
// an Adblock line is encoded as two additions: one exact, one wildcard.
func loadAdblockLine(bl *Blocklist, line string) error {
	if strings.HasPrefix(line, "@@") || strings.HasPrefix(line, "!") {
		return nil // whitelist / comment rules, not supported
	}
	if !strings.HasPrefix(line, "||") {
		return nil
	}
	domain := strings.TrimPrefix(line, "||")
	if idx := strings.IndexAny(domain, "^$"); idx >= 0 {
		domain = domain[:idx]
	}
	if strings.ContainsAny(domain, "/*") {
		return nil
	}
	name, err := wire.ParseName(domain)
	if err != nil {
		return err
	}
	bl.Add(name, false)
	bl.Add(name, true)
	return nil
}
