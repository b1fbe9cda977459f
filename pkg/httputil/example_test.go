package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ncassessoria/gerapost/pkg/httputil"
)

func ExampleRetry() {
	calls := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return &httputil.RetryableError{Err: errors.New("temporary")}
		}
		return nil
	})
	fmt.Println(err, calls)
	// Output: <nil> 2
}
