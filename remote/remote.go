// Package remote provides read-only streaming access to files served over
// HTTP, using range requests. It exposes an io.ReaderAt so a container file
// hosted on an object store can be opened without downloading it: only the
// byte ranges that are actually read are fetched.
//
// Fetches are block-aligned and cached, so the sequential metadata reads an
// open performs, and the localized reads of dataset slicing, each translate
// to a small number of range requests.
package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultBlockSize is the granularity of range requests.
const DefaultBlockSize = 512 * 1024

// DefaultMaxBlocks bounds the block cache (DefaultMaxBlocks * block size
// bytes of memory).
const DefaultMaxBlocks = 64

// Option configures a Reader.
type Option func(*Reader)

// WithHTTPClient sets the HTTP client used for range requests.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Reader) {
		r.client = c
	}
}

// WithBlockSize sets the range request granularity in bytes.
func WithBlockSize(n int64) Option {
	return func(r *Reader) {
		if n > 0 {
			r.blockSize = n
		}
	}
}

// WithMaxBlocks sets the number of blocks kept in the cache.
func WithMaxBlocks(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.maxBlocks = n
		}
	}
}

// WithLogger sets the logger for fetch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = l
	}
}

// Reader is an io.ReaderAt over a remote object. It is safe for concurrent
// use.
type Reader struct {
	url       string
	size      int64
	client    *http.Client
	blockSize int64
	maxBlocks int
	logger    *slog.Logger

	ctx context.Context

	mu    sync.Mutex
	cache map[int64][]byte
	order []int64 // fetch order, oldest first, for eviction

	group singleflight.Group
}

// Open probes the object at url for its size and returns a Reader over it.
// The server must support range requests. ctx governs the probe and all
// subsequent fetches.
func Open(ctx context.Context, url string, opts ...Option) (*Reader, error) {
	r := &Reader{
		url:       url,
		client:    http.DefaultClient,
		blockSize: DefaultBlockSize,
		maxBlocks: DefaultMaxBlocks,
		logger:    slog.Default(),
		ctx:       ctx,
		cache:     make(map[int64][]byte),
	}
	for _, opt := range opts {
		opt(r)
	}

	size, err := r.probeSize(ctx)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", url, err)
	}
	r.size = size

	r.logger.Debug("opened remote object", "url", url, "size", size, "block_size", r.blockSize)
	return r, nil
}

// Size returns the total size of the remote object in bytes.
func (r *Reader) Size() int64 {
	return r.size
}

// Close releases the cache. The Reader must not be used afterwards.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = nil
	r.order = nil
	return nil
}

// ReadAt implements io.ReaderAt. Reads spanning multiple blocks fetch each
// block at most once; concurrent reads of the same block share one request.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= r.size {
		return 0, io.EOF
	}

	want := int64(len(p))
	if off+want > r.size {
		want = r.size - off
	}

	var n int64
	for n < want {
		pos := off + n
		blockIdx := pos / r.blockSize

		block, err := r.block(blockIdx)
		if err != nil {
			return int(n), err
		}

		blockOff := pos - blockIdx*r.blockSize
		copied := copy(p[n:want], block[blockOff:])
		n += int64(copied)
	}

	if n < int64(len(p)) {
		return int(n), io.EOF
	}
	return int(n), nil
}

// block returns the cached block or fetches it, deduplicating concurrent
// fetches of the same block.
func (r *Reader) block(idx int64) ([]byte, error) {
	r.mu.Lock()
	if r.cache == nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("reader is closed")
	}
	if block, ok := r.cache[idx]; ok {
		r.mu.Unlock()
		return block, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do(strconv.FormatInt(idx, 10), func() (interface{}, error) {
		block, err := r.fetchBlock(idx)
		if err != nil {
			return nil, err
		}
		r.store(idx, block)
		return block, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// store inserts a block, evicting the oldest block when over capacity.
func (r *Reader) store(idx int64, block []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		return
	}
	if _, ok := r.cache[idx]; ok {
		return
	}
	for len(r.cache) >= r.maxBlocks && len(r.order) > 0 {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.cache, oldest)
	}
	r.cache[idx] = block
	r.order = append(r.order, idx)
}

// fetchBlock issues one range request for the given block.
func (r *Reader) fetchBlock(idx int64) ([]byte, error) {
	start := idx * r.blockSize
	end := start + r.blockSize - 1
	if end >= r.size {
		end = r.size - 1
	}

	req, err := http.NewRequestWithContext(r.ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching block %d: %w", idx, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
		// expected
	case http.StatusOK:
		// Server ignored the range header. Tolerable only if the whole
		// object fits in one block.
		if idx != 0 || r.size > r.blockSize {
			return nil, fmt.Errorf("server does not support range requests")
		}
	default:
		return nil, fmt.Errorf("fetching block %d: unexpected status %s", idx, resp.Status)
	}

	block, err := io.ReadAll(io.LimitReader(resp.Body, end-start+1))
	if err != nil {
		return nil, fmt.Errorf("reading block %d: %w", idx, err)
	}
	if int64(len(block)) != end-start+1 {
		return nil, fmt.Errorf("block %d: got %d bytes, want %d", idx, len(block), end-start+1)
	}

	r.logger.Debug("fetched block", "url", r.url, "block", idx, "bytes", len(block))
	return block, nil
}

// probeSize determines the object size via HEAD, falling back to a 1-byte
// range request for servers that do not answer HEAD.
func (r *Reader) probeSize(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, r.url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := r.client.Do(req)
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusOK && resp.ContentLength > 0 {
			return resp.ContentLength, nil
		}
	}

	// Fall back to a range request and parse Content-Range.
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", "bytes=0-0")

	resp, err = r.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK && resp.ContentLength > 0 {
		return resp.ContentLength, nil
	}
	if resp.StatusCode != http.StatusPartialContent {
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	// Content-Range: bytes 0-0/12345
	cr := resp.Header.Get("Content-Range")
	i := strings.LastIndex(cr, "/")
	if i < 0 {
		return 0, fmt.Errorf("malformed Content-Range %q", cr)
	}
	size, err := strconv.ParseInt(cr[i+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed Content-Range %q: %w", cr, err)
	}
	return size, nil
}
