package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/helloworldx64/craftpacker/pkg/observability"
	"github.com/helloworldx64/craftpacker/pkg/progress"
)

// logHooks traces engine activity to the debug log.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnMatchStart(context.Context, string) {}

func (h logHooks) OnMatchComplete(_ context.Context, name, strategy string, ok bool, d time.Duration) {
	h.logger.Debug("match", "name", name, "strategy", strategy, "ok", ok, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnDownloadStart(_ context.Context, key, url string) {
	h.logger.Debug("download start", "key", key, "url", url)
}

func (h logHooks) OnDownloadComplete(_ context.Context, key string, n int64, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("download failed", "key", key, "err", err)
		return
	}
	h.logger.Debug("download done", "key", key, "bytes", n, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnRequest(context.Context, string, string, string) {}

func (h logHooks) OnResponse(_ context.Context, method, _, path string, status int, d time.Duration) {
	h.logger.Debug("http", "method", method, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, _, path string, err error) {
	h.logger.Debug("http error", "method", method, "path", path, "err", err)
}

// eventLog mirrors engine events to the debug log. It is nil when debug
// logging is off.
func (c *CLI) eventLog() progress.Sink {
	if c.Logger.GetLevel() > log.DebugLevel {
		return nil
	}
	return progress.SinkFunc(func(e progress.Event) {
		switch e.Kind {
		case progress.KindFound:
			c.Logger.Debug("found", "key", e.Key, "name", e.Name, "tag", e.Tag)
		case progress.KindUnmatched:
			c.Logger.Debug("unmatched", "key", e.Key)
		case progress.KindError:
			c.Logger.Debug("item failed", "key", e.Key, "msg", e.Message)
		}
	})
}

// installHooks routes observability events to the debug log when it is
// enabled, and restores the no-op hooks otherwise.
func (c *CLI) installHooks() {
	observability.Reset()
	if c.Logger.GetLevel() > log.DebugLevel {
		return
	}
	h := logHooks{logger: c.Logger}
	observability.SetMatchHooks(h)
	observability.SetDownloadHooks(h)
	observability.SetHTTPHooks(h)
}
