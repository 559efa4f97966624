// Package resource governs the shared resources a rescan consumes.
//
//   - Writer slot: a weight-1 semaphore. Exactly one rescan may run; a second
//     request fails fast instead of queueing.
//   - Parallelism: the worker count used for extraction, decoding and scoring.
//   - Extraction rate: a token bucket that throttles metadata reads so a rescan
//     does not saturate a slow disk while readers are being served.
//
// A rescan uses all three:
//
//	rc := resource.NewController(resource.Config{
//	    Workers:           8,
//	    ExtractionsPerSec: 200,
//	})
//
//	if !rc.TryAcquireWriter() {
//	    return ScanFileInUse
//	}
//	defer rc.ReleaseWriter()
//
//	if err := rc.AcquireExtraction(ctx); err != nil {
//	    return err
//	}
//
// All methods are safe for concurrent use and treat a nil Controller as
// unlimited.
package resource
