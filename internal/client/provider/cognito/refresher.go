package cognito

import (
	"context"
	"time"
)

const refreshCallTimeout = 10 * time.Second

// StartRefresher refreshes the stored session every interval when its access
// token expires within leeway. It blocks until ctx is done.
//
// A refresh token revoked elsewhere surfaces here as tokenRefresh_failure,
// which is how a sign-out on another device reaches this one.
func (c *Client) StartRefresher(ctx context.Context, interval, leeway time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			callCtx, cancel := context.WithTimeout(ctx, refreshCallTimeout)
			err := c.RefreshIfNeeded(callCtx, leeway)
			cancel()

			if err != nil {
				c.log.Debug(ctx, "background refresh failed", "error", err.Error())
			}

		case <-ctx.Done():
			return
		}
	}
}
