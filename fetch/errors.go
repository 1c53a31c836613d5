package fetch

import "fmt"

// FetchError wraps a failed page retrieval: network failure, timeout, or a
// non-2xx response. Callers skip the URL (or try the next index candidate);
// a FetchError never aborts a run.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
