package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meterflow/meterflow/internal/contract"
)

// RawObject is one fetched store object, held only for the duration of a
// single query.
type RawObject struct {
	Key          string
	LastModified int64 // Unix seconds, 0 when unknown
	Data         []byte
}

// Fetcher resolves planned paths into deduplicated raw object contents. A key
// reachable through two different plan entries is read exactly once; the seen
// set is guarded because object reads within a prefix fan out concurrently.
//
// Failure semantics: a single object's read failure, or a listing failure for
// one prefix, is logged and skipped. Missing literal keys are expected (hour
// buckets for quiet periods are simply never written) and skipped silently.
type Fetcher struct {
	store   contract.ObjectStore
	bucket  string
	suffix  string // ".json" or ".csv"
	limit   int    // max parallel object reads
	timeout time.Duration // per store call

	mu      sync.Mutex
	seen    map[string]struct{}
	results []RawObject
}

// NewFetcher builds a query-scoped fetcher. The limit bounds concurrent
// object reads per prefix; the timeout bounds every individual store call, so
// one slow object cannot stall the whole query.
func NewFetcher(store contract.ObjectStore, bucket, suffix string, limit int, timeout time.Duration) *Fetcher {
	if limit <= 0 {
		limit = contract.DefaultWorkers
	}
	if timeout <= 0 {
		timeout = contract.DefaultFetchTimeout
	}
	return &Fetcher{
		store:   store,
		bucket:  bucket,
		suffix:  suffix,
		limit:   limit,
		timeout: timeout,
		seen:    make(map[string]struct{}),
	}
}

// callCtx derives the bounded context for a single store call.
func (f *Fetcher) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, f.timeout)
}

// Fetch resolves the plan entries in order and returns the fetched objects.
// The only error it can return is ctx cancellation; store-level failures are
// absorbed per entry.
func (f *Fetcher) Fetch(ctx context.Context, entries []PlanEntry) ([]RawObject, error) {
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return f.results, err
		}
		if entry.IsPrefix {
			f.fetchPrefix(ctx, entry.Path)
		} else {
			f.fetchLiteral(ctx, entry.Path)
		}
	}
	return f.results, nil
}

// fetchLiteral checks one exact key and reads it when present.
func (f *Fetcher) fetchLiteral(ctx context.Context, key string) {
	if !f.markSeen(key) {
		return
	}
	callCtx, cancel := f.callCtx(ctx)
	defer cancel()
	stat, err := f.store.StatObject(callCtx, f.bucket, key)
	if err != nil {
		if !contract.IsNotFound(err) {
			contract.LogWarn("stat object "+key, err)
		}
		return
	}
	data, err := f.store.GetObject(callCtx, f.bucket, key)
	if err != nil {
		contract.LogWarn("read object "+key, err)
		return
	}
	f.keep(RawObject{Key: key, LastModified: stat.LastModified.Unix(), Data: data})
}

// fetchPrefix lists a prefix and reads every matching, unseen object.
func (f *Fetcher) fetchPrefix(ctx context.Context, prefix string) {
	listCtx, cancel := f.callCtx(ctx)
	defer cancel()
	infos, err := f.store.ListObjects(listCtx, f.bucket, prefix, false)
	if err != nil {
		// A broken listing is isolated: keep whatever this prefix yielded and
		// move on to the remaining plan entries.
		contract.LogWarn("list prefix "+prefix, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.limit)
	for _, info := range infos {
		if !strings.HasSuffix(info.Key, f.suffix) || !f.markSeen(info.Key) {
			continue
		}
		g.Go(func() error {
			readCtx, cancel := f.callCtx(ctx)
			defer cancel()
			data, err := f.store.GetObject(readCtx, f.bucket, info.Key)
			if err != nil {
				contract.LogWarn("read object "+info.Key, err)
				return nil
			}
			f.keep(RawObject{Key: info.Key, LastModified: info.LastModified.Unix(), Data: data})
			return nil
		})
	}
	_ = g.Wait()
}

// markSeen atomically records a key, reporting true on the first sighting.
func (f *Fetcher) markSeen(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.seen[key]; dup {
		return false
	}
	f.seen[key] = struct{}{}
	return true
}

func (f *Fetcher) keep(obj RawObject) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, obj)
}
