// Package retry runs an operation again with exponential backoff when it fails
// with a transient error.
//
// Whether an error is worth retrying is decided by errors.IsTransient unless
// Config.Retryable says otherwise. Decode errors and configuration errors are
// returned after the first attempt; wrap any other error with NonRetryable to
// get the same behaviour.
//
//	err := retry.Do(ctx, retry.Quick(), func() error {
//	    return client.Publish(ctx, subject, data)
//	})
//
// Presets:
//
//   - DefaultConfig(): 3 attempts, 100ms to 5s
//   - Quick(): 4 attempts, 10ms to 200ms, for per-message work
package retry
