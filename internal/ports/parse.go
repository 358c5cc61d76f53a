package ports

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/robgonnella/portsweep/internal/exception"
)

// MaxPort highest valid tcp port
const MaxPort = 65535

// Parse expands a port specification such as "22,80,8000-8010" into a
// sorted slice of unique ports. Ranges are inclusive.
func Parse(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)

	if spec == "" {
		return nil, exception.NewInputError("ports", "empty port specification")
	}

	seen := map[int]struct{}{}

	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)

		if token == "" {
			return nil, exception.NewInputError("ports", "empty token in "+strconv.Quote(spec))
		}

		start, end, err := parseToken(token)

		if err != nil {
			return nil, err
		}

		for p := start; p <= end; p++ {
			seen[p] = struct{}{}
		}
	}

	result := make([]int, 0, len(seen))

	for p := range seen {
		result = append(result, p)
	}

	sort.Ints(result)

	return result, nil
}

func parseToken(token string) (int, int, error) {
	bounds := strings.SplitN(token, "-", 2)

	start, err := parsePort(bounds[0])

	if err != nil {
		return 0, 0, err
	}

	if len(bounds) == 1 {
		return start, start, nil
	}

	end, err := parsePort(bounds[1])

	if err != nil {
		return 0, 0, err
	}

	if start > end {
		return 0, 0, exception.NewInputError(
			"ports",
			fmt.Sprintf("range start greater than end: %s", token),
		)
	}

	return start, end, nil
}

func parsePort(raw string) (int, error) {
	raw = strings.TrimSpace(raw)

	port, err := strconv.Atoi(raw)

	if err != nil {
		return 0, exception.NewInputError("ports", fmt.Sprintf("not a number: %q", raw))
	}

	if port < 0 || port > MaxPort {
		return 0, exception.NewInputError(
			"ports",
			fmt.Sprintf("port %d outside 0-%d", port, MaxPort),
		)
	}

	return port, nil
}
