package blobdb

import "time"

// withRetry runs fn up to attempts times with exponential backoff
// starting at 500ms and capped at maxBackoff.
func withRetry(attempts int, maxBackoff time.Duration, fn func() error) error {
	backoff := 500 * time.Millisecond
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return err
}
