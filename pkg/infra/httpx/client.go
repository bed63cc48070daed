package httpx

import "net/http"

// Client abstracts *http.Client for outbound platform calls so tests can
// substitute a mock.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}
