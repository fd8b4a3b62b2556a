package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.bug.st/downloader/v2"
	"golang.org/x/sync/errgroup"

	"github.com/helloworldx64/craftpacker/pkg/buildinfo"
	"github.com/helloworldx64/craftpacker/pkg/deps"
	perrors "github.com/helloworldx64/craftpacker/pkg/errors"
	"github.com/helloworldx64/craftpacker/pkg/integrations"
	"github.com/helloworldx64/craftpacker/pkg/observability"
	"github.com/helloworldx64/craftpacker/pkg/progress"
)

const (
	// DefaultWorkers is the number of concurrent transfers.
	DefaultWorkers = 4

	// DefaultPollInterval is how often transfer progress is sampled.
	DefaultPollInterval = 100 * time.Millisecond

	// MaxMessageLen caps the length of per-item error messages.
	MaxMessageLen = 20

	// NetworkErrorMessage is reported for any failure of the transfer itself.
	NetworkErrorMessage = "Network Error"
)

// KeyFunc maps a package to the key its events and report entries are
// addressed by. Keys should be unique per project.
type KeyFunc func(*deps.Package) string

// ByProjectID keys events by project id.
func ByProjectID(p *deps.Package) string { return p.ProjectID }

// Options configures a [Coordinator].
type Options struct {
	Workers      int           // defaults to DefaultWorkers
	PollInterval time.Duration // defaults to DefaultPollInterval
	HTTP         *http.Client  // defaults to integrations.NewTransferClient()
	UserAgent    string        // defaults to buildinfo.UserAgent()
	Sink         progress.Sink
	Logger       *log.Logger
}

// Coordinator runs download batches. A Coordinator must not run two
// batches at once.
type Coordinator struct {
	workers int
	poll    time.Duration
	config  downloader.Config
	sink    progress.Sink
	logger  *log.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New creates a Coordinator.
func New(opts Options) *Coordinator {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.HTTP == nil {
		opts.HTTP = integrations.NewTransferClient()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = buildinfo.UserAgent()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Coordinator{
		workers: opts.Workers,
		poll:    opts.PollInterval,
		config: downloader.Config{
			HttpClient:          *opts.HTTP,
			DoNotResumeDownload: true,
			ExtraHeaders:        map[string]string{"User-Agent": opts.UserAgent},
		},
		sink:     progress.OrDiscard(opts.Sink),
		logger:   opts.Logger,
		inflight: make(map[string]struct{}),
	}
}

// Report summarizes one batch.
type Report struct {
	BatchID   string
	Completed []string          // keys written successfully, in completion order
	Failed    map[string]string // key -> short message
	Skipped   []string          // keys of projects already queued earlier in the batch
	Bytes     int64
}

// OK reports whether every dispatched item succeeded.
func (r *Report) OK() bool { return len(r.Failed) == 0 }

// Run downloads every package of plan into destDir, creating it if needed.
// key addresses events; nil means [ByProjectID]. Packages whose project is
// already in flight in this batch are skipped.
//
// The returned error is non-nil only when destDir cannot be created or ctx
// was canceled; per-item failures are in the report.
func (c *Coordinator) Run(ctx context.Context, plan *deps.Plan, destDir string, key KeyFunc) (*Report, error) {
	if key == nil {
		key = ByProjectID
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidPath, err, "cannot create %s", destDir)
	}

	c.mu.Lock()
	clear(c.inflight)
	c.mu.Unlock()

	report := &Report{BatchID: uuid.NewString(), Failed: make(map[string]string)}
	var reportMu sync.Mutex

	logger := c.logger.With("batch", report.BatchID)
	logger.Debug("download batch", "packages", plan.Len(), "dest", destDir)

	var g errgroup.Group
	g.SetLimit(c.workers)

	total := plan.Len()
	for i, pkg := range plan.Packages {
		k := key(pkg)
		if !c.claim(pkg.ProjectID) {
			report.Skipped = append(report.Skipped, k)
			continue
		}
		c.sink.Emit(progress.Status("Starting download %d/%d: %s", i+1, total, pkg.Name))

		g.Go(func() error {
			n, err := c.fetch(ctx, pkg, k, destDir)

			reportMu.Lock()
			defer reportMu.Unlock()
			if err != nil {
				msg := Message(err)
				report.Failed[k] = msg
				c.sink.Emit(progress.Error(k, msg))
				logger.Debug("download failed", "key", k, "url", pkg.URL, "err", err)
				return nil
			}
			report.Completed = append(report.Completed, k)
			report.Bytes += n
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return report, err
	}
	c.sink.Emit(progress.Status("All downloads completed."))
	logger.Info("downloads finished", "ok", len(report.Completed), "failed", len(report.Failed), "bytes", report.Bytes)
	return report, nil
}

// claim inserts projectID into the in-flight set and reports whether it
// was absent.
func (c *Coordinator) claim(projectID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inflight[projectID]; ok {
		return false
	}
	c.inflight[projectID] = struct{}{}
	return true
}

// fetch transfers one file and removes it again on any failure.
func (c *Coordinator) fetch(ctx context.Context, pkg *deps.Package, key, destDir string) (n int64, err error) {
	start := time.Now()
	observability.Download().OnDownloadStart(ctx, key, pkg.URL)
	defer func() {
		observability.Download().OnDownloadComplete(ctx, key, n, time.Since(start), err)
	}()

	c.sink.Emit(progress.Progress(key, 0))

	if err := perrors.ValidateFilename(pkg.Filename); err != nil {
		return 0, err
	}
	path := filepath.Join(destDir, pkg.Filename)

	n, err = c.transfer(ctx, pkg.URL, path, key)
	if err != nil {
		_ = os.Remove(path)
		return n, err
	}
	c.sink.Emit(progress.Progress(key, 100))
	return n, nil
}

func (c *Coordinator) transfer(ctx context.Context, url, path, key string) (int64, error) {
	// Surface local write problems before touching the network.
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	_ = f.Close()

	d, err := downloader.DownloadWithConfigAndContext(ctx, path, url, c.config)
	if err != nil {
		return 0, &TransferError{Err: err}
	}
	if code := d.Resp.StatusCode; code < 200 || code > 299 {
		_ = d.Close()
		return 0, &TransferError{Err: fmt.Errorf("unexpected status %d", code)}
	}

	size := d.Size()
	if size == 0 && d.Resp.ContentLength != 0 {
		// Run trusts the HEAD length and would skip a non-empty GET body.
		_ = d.Close()
		return 0, &TransferError{Err: fmt.Errorf("HEAD reported an empty file, GET length %d", d.Resp.ContentLength)}
	}

	last := 0
	err = d.RunAndPoll(func(current int64) {
		if size <= 0 {
			return
		}
		pct := int(current * 100 / size)
		if pct >= 100 {
			pct = 99
		}
		if pct > last {
			last = pct
			c.sink.Emit(progress.Progress(key, pct))
		}
	}, c.poll)
	if size == 0 {
		// An empty body skips the copy loop, which would otherwise close.
		_ = d.Close()
	}
	if err != nil {
		return d.Completed(), &TransferError{Err: err}
	}
	return d.Completed(), verifyWritten(path, d.Completed(), size)
}

// verifyWritten checks that path holds every byte read. The copy loop
// drops write errors, so a full disk shows up only as a short file.
func verifyWritten(path string, read, size int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	written := info.Size()
	if written != read || (size > 0 && written != size) {
		return perrors.Wrap(perrors.ErrCodeInternal,
			fmt.Errorf("%s: wrote %d of %d bytes", path, written, read), "incomplete write")
	}
	return nil
}

// TransferError marks a failure of the HTTP transfer: connection, status
// or a body cut short.
type TransferError struct {
	Err error
}

func (e *TransferError) Error() string { return "transfer: " + e.Err.Error() }
func (e *TransferError) Unwrap() error { return e.Err }

// Message returns the short per-item message for err: [NetworkErrorMessage]
// for transfer failures, otherwise the error text cut to [MaxMessageLen]
// characters.
func Message(err error) string {
	var te *TransferError
	if errors.As(err, &te) {
		return NetworkErrorMessage
	}
	return truncate(perrors.UserMessage(err), MaxMessageLen)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
