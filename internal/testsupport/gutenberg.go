package testsupport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
)

var bookPathPattern = regexp.MustCompile(`^/cache/epub/(\d+)/pg(\d+)(\.txt|\.cover\.medium\.jpg)$`)

// GutenbergServer is a fake archive serving texts from the preferred cache
// location. Every other path returns 404.
type GutenbergServer struct {
	*httptest.Server

	mu       sync.Mutex
	books    map[int]string
	statuses map[int]int
	requests []string
}

// NewGutenbergServer starts a fake archive holding books keyed by id.
// Covers exist for every book that has text.
func NewGutenbergServer(t testing.TB, books map[int]string) *GutenbergServer {
	t.Helper()

	srv := &GutenbergServer{
		books:    make(map[int]string, len(books)),
		statuses: make(map[int]int),
	}
	for id, text := range books {
		srv.books[id] = text
	}
	srv.Server = httptest.NewServer(http.HandlerFunc(srv.serve))
	t.Cleanup(srv.Close)
	return srv
}

// SetBook adds or replaces a book.
func (s *GutenbergServer) SetBook(id int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[id] = text
}

// FailWith makes every request for id answer with status.
func (s *GutenbergServer) FailWith(id, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[id] = status
}

// Requests returns "METHOD path" for every request received so far.
func (s *GutenbergServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestCount counts requests whose path mentions the book id.
func (s *GutenbergServer) RequestCount(id int) int {
	needle := "/" + strconv.Itoa(id) + "/"
	count := 0
	for _, req := range s.Requests() {
		if strings.Contains(req, needle) {
			count++
		}
	}
	return count
}

func (s *GutenbergServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	s.mu.Unlock()

	match := bookPathPattern.FindStringSubmatch(r.URL.Path)
	if match == nil || match[1] != match[2] {
		http.NotFound(w, r)
		return
	}
	id, _ := strconv.Atoi(match[1])

	s.mu.Lock()
	text, ok := s.books[id]
	status, forced := s.statuses[id]
	s.mu.Unlock()

	if forced {
		w.WriteHeader(status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	if match[3] != ".txt" {
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprint(w, text)
}
