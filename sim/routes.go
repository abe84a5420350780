package sim

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// RouteBoard hands out route identifiers from a fixed, ordered list.
// Each call to Next consumes the next unassigned entry; read and advance are atomic.
type RouteBoard struct {
	mu     sync.Mutex
	routes []string
	cursor int
}

// NewRouteBoard copies routes into a new board.
func NewRouteBoard(routes []string) *RouteBoard {
	cp := make([]string, len(routes))
	copy(cp, routes)
	return &RouteBoard{routes: cp}
}

// Next returns the next route and its 0-based position.
// Running past the end of the list is an invariant violation.
func (b *RouteBoard) Next() (int, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cursor >= len(b.routes) {
		return 0, "", invariantf("route list exhausted after %d assignments", len(b.routes))
	}
	idx := b.cursor
	b.cursor++
	return idx, b.routes[idx], nil
}

// Assigned returns how many routes have been handed out.
func (b *RouteBoard) Assigned() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor
}

// Len returns the total number of routes on the board.
func (b *RouteBoard) Len() int { return len(b.routes) }

// LoadRouteList reads route identifiers from a text file, one per line.
// Blank lines and lines starting with '#' are skipped.
func LoadRouteList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading route list: %w", err)
	}
	defer f.Close()

	var routes []string
	seen := make(map[string]int)
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		id := strings.TrimSpace(sc.Text())
		if id == "" || strings.HasPrefix(id, "#") {
			continue
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("route list %s: duplicate route %q on lines %d and %d", path, id, prev, line)
		}
		seen[id] = line
		routes = append(routes, id)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading route list: %w", err)
	}
	return routes, nil
}

// Route code generation bounds: candidate codes are multiples of routeCodeStep in [1, routeCodeMax].
const (
	routeCodeMax  = 5000
	routeCodeStep = 3

	// MaxGeneratedRoutes is the largest n GenerateRoutes accepts.
	MaxGeneratedRoutes = routeCodeMax / routeCodeStep
)

// GenerateRoutes draws n distinct route codes from rng and returns them in
// ascending numeric order, so the shortest routes are handed out first.
// Panics if n exceeds the number of available codes.
func GenerateRoutes(rng *rand.Rand, n int) []string {
	available := MaxGeneratedRoutes
	if n < 0 || n > available {
		panic(fmt.Sprintf("cannot generate %d distinct routes (max %d)", n, available))
	}
	picked := make(map[int]bool, n)
	codes := make([]int, 0, n)
	for len(codes) < n {
		code := (rng.Intn(available) + 1) * routeCodeStep
		if picked[code] {
			continue
		}
		picked[code] = true
		codes = append(codes, code)
	}
	sort.Ints(codes)

	routes := make([]string, n)
	for i, c := range codes {
		routes[i] = strconv.Itoa(c)
	}
	return routes
}
