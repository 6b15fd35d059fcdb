package acquire

import (
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hydrograph/lamah-dataset/internal/observability"
)

// clock is a package-level time source so tests can freeze progress pacing.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for progress reporting. Pass nil to reset
// to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

const progressLogInterval = 10 * time.Second

// progressReader counts bytes flowing through a download, feeding the
// Prometheus byte counter and logging progress at a fixed pace. Reporting
// is informational only; it never slows or fails the download.
type progressReader struct {
	r       io.Reader
	total   int64 // -1 when Content-Length is unknown
	read    int64
	logger  *slog.Logger
	metrics *observability.Metrics
	lastLog time.Time
}

func newProgressReader(r io.Reader, total int64, logger *slog.Logger, metrics *observability.Metrics) *progressReader {
	return &progressReader{
		r:       r,
		total:   total,
		logger:  logger,
		metrics: metrics,
		lastLog: clock.Now(),
	}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.metrics.DownloadBytes.Add(float64(n))
	}

	if now := clock.Now(); now.Sub(p.lastLog) >= progressLogInterval {
		p.lastLog = now
		if p.total > 0 {
			p.logger.Info("download progress",
				"read_bytes", p.read, "total_bytes", p.total,
				"percent", float64(p.read)*100/float64(p.total))
		} else {
			p.logger.Info("download progress", "read_bytes", p.read)
		}
	}
	return n, err
}
