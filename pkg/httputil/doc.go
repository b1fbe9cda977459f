// Package httputil provides HTTP plumbing shared by the metadata importer,
// the relay and the image loader.
//
// # Overview
//
//   - [Retry]: automatic retry with exponential backoff
//   - [CheckStatus]: classifies responses into success, retryable and fatal
//   - [NewClient]: a client with a timeout and a tool User-Agent
//
// # Retry
//
// [Retry] only repeats failures wrapped in [RetryableError]:
//
//   - network errors (wrap with [Transient])
//   - 5xx server errors
//   - 429 rate limit responses
//
// Everything else, including context cancellation, returns immediately:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Transient(err)
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp)
//	})
//
// # Configuration
//
//   - Default timeout: 15 seconds
//   - Max attempts: 3
//   - Base backoff: 500 milliseconds
package httputil
