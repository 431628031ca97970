package targets

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	sharederrors "github.com/khanhnv2901/sanscout/internal/shared/errors"
)

// Load produces the ordered target list from exactly one of a CIDR range or
// a line-delimited file. The list is returned as-is: no deduplication and no
// normalization, so membership checks downstream see the operator's exact
// strings.
func Load(cidr, file string) ([]string, error) {
	switch {
	case cidr == "" && file == "":
		return nil, sharederrors.ErrNoTargetInput
	case cidr != "" && file != "":
		return nil, sharederrors.ErrConflictingTargetInput
	case cidr != "":
		return ExpandCIDR(cidr)
	default:
		return LoadFile(file)
	}
}

// ExpandCIDR lists every address in the network, including the network and
// broadcast addresses, the way operators usually sweep a block.
func ExpandCIDR(cidr string) ([]string, error) {
	_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", sharederrors.ErrInvalidCIDR, cidr)
	}
	if ones, _ := network.Mask.Size(); ones == 0 {
		// A zero-length prefix would enumerate the whole address space.
		return nil, fmt.Errorf("%w: prefix too short: %s", sharederrors.ErrInvalidCIDR, cidr)
	}

	var out []string
	for ip := network.IP.Mask(network.Mask); network.Contains(ip); ip = nextIP(ip) {
		out = append(out, ip.String())
	}
	return out, nil
}

// LoadFile reads one target per line, trimming whitespace and skipping
// blank lines.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- path is the operator's own input list.
	if err != nil {
		return nil, fmt.Errorf("open target file: %w", err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read target file: %w", err)
	}
	if len(out) == 0 {
		return nil, sharederrors.ErrEmptyTargetFile
	}
	return out, nil
}

func nextIP(ip net.IP) net.IP {
	next := make(net.IP, len(ip))
	copy(next, ip)
	for i := len(next) - 1; i >= 0; i-- {
		next[i]++
		if next[i] != 0 {
			break
		}
	}
	return next
}
