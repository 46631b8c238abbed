// File: utils/constants.go
package utils

import "time"

// WorkerCacheKey holds the serialized active worker directory.
const WorkerCacheKey = "workers:active"

// DefaultWorkerCacheTTL is used when WORKER_CACHE_TTL is unset.
const DefaultWorkerCacheTTL = time.Minute

// RepoTimeout bounds every single repository call.
const RepoTimeout = 5 * time.Second
