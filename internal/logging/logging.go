package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"stakepool/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	mu     sync.RWMutex
	output io.Writer = os.Stdout
)

// Init installs the global zerolog logger. The returned closer releases the
// log file when LOG_FILE is set; it is a no-op otherwise.
func Init(cfg config.LogConfig) (io.Closer, error) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var out io.Writer = os.Stdout
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	var closer io.Closer = nopCloser{}
	if path := strings.TrimSpace(cfg.File); path != "" {
		f, err := newRotatingFile(path, cfg.MaxMB)
		if err != nil {
			return nil, err
		}
		out = zerolog.MultiLevelWriter(out, f)
		closer = f
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger

	mu.Lock()
	output = out
	mu.Unlock()
	return closer, nil
}

// Writer is the sink the global logger writes to, shared with the HTTP request logger.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
