package feed

import "fmt"

// FetchError reports that one feed could not be retrieved or parsed.
type FetchError struct {
	FeedURL string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.FeedURL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
