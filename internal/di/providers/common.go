package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// sessionCleanupInterval is how often expired sessions are pruned.
	sessionCleanupInterval = time.Hour

	// coverHashTimeout bounds one cover download for BlurHash encoding.
	coverHashTimeout = 5 * time.Second
)
