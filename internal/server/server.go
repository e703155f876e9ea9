// internal/server/server.go
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	reloadMessage = "reload"
	// DefaultDebounce is the quiet period after the last change before a rebuild.
	DefaultDebounce = 500 * time.Millisecond
)

// Config describes a preview server run.
type Config struct {
	Port int
	// Root is the directory served, normally the site's output dir.
	Root string
	// Watch lists directories (watched recursively) and files (watched
	// through their parent directory). Missing entries are skipped.
	Watch []string
	// Build regenerates the site. clean is true only for the first build.
	Build    func(clean bool) error
	Debounce time.Duration
	Logger   *log.Logger
}

// Run builds the site, starts watching for changes and serves Root with
// live reload until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "", 0)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	if err := cfg.Build(true); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create file watcher: %w", err)
	}
	defer watcher.Close()
	if err := addWatches(watcher, cfg.Watch, logger); err != nil {
		return err
	}

	hub := newHub(logger)
	defer hub.Close()

	go watchLoop(ctx, watcher.Events, watcher.Errors, cfg.Debounce, func() error { return cfg.Build(false) }, hub, logger)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           NewHandler(cfg.Root, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	logger.Printf("Serving %s on http://localhost:%d", cfg.Root, cfg.Port)
	logger.Println("Press Ctrl+C to stop")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// NewHandler serves root with the live-reload script injected into HTML
// pages and the reload socket on /ws.
func NewHandler(root string, hub *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.Handle("/", liveReload(http.FileServer(http.Dir(root))))
	return mux
}

func addWatches(watcher *fsnotify.Watcher, paths []string, logger *log.Logger) error {
	watched := make(map[string]bool)
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if watched[dir] {
			return
		}
		if err := watcher.Add(dir); err != nil {
			logger.Printf("Error adding watch on %s: %v", dir, err)
			return
		}
		logger.Printf("Watching directory: %s", dir)
		watched[dir] = true
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("could not stat path %s: %w", path, err)
		}
		if !info.IsDir() {
			// Editors often save by renaming a swap file, so watch the parent.
			add(filepath.Dir(path))
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				add(p)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
	}
	return nil
}

// watchLoop rebuilds once the events have been quiet for debounce, then
// reloads the connected browsers. Chmod-only events are ignored.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, debounce time.Duration, rebuild func() error, hub *Hub, logger *log.Logger) {
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	var pending string

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending = event.Name
			timer.Reset(debounce)
		case err, ok := <-errs:
			if !ok {
				return
			}
			logger.Printf("Watcher error: %v", err)
		case <-timer.C:
			logger.Printf("Change detected in %s, rebuilding...", pending)
			if err := rebuild(); err != nil {
				logger.Printf("Error rebuilding site: %v", err)
				continue
			}
			logger.Println("Site rebuilt successfully. Triggering reload...")
			hub.Reload()
		}
	}
}

func isHTMLPath(p string) bool {
	return strings.HasSuffix(p, ".html") || strings.HasSuffix(p, "/")
}

// liveReload disables caching and, for successful HTML responses, inserts
// the reload script before the first </body>.
func liveReload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		if !isHTMLPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		rec := &bufferedResponse{header: make(http.Header), status: http.StatusOK}
		next.ServeHTTP(rec, r)

		for key, values := range rec.header {
			if key == "Content-Length" {
				continue
			}
			w.Header()[key] = values
		}
		body := rec.body.Bytes()
		if rec.status == http.StatusOK {
			body = bytes.Replace(body, []byte("</body>"), []byte(liveReloadScript+"</body>"), 1)
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(rec.status)
		w.Write(body)
	})
}

// bufferedResponse holds a response so the body can be edited before it
// is sent.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func (b *bufferedResponse) Header() http.Header         { return b.header }
func (b *bufferedResponse) Write(p []byte) (int, error) { return b.body.Write(p) }
func (b *bufferedResponse) WriteHeader(status int)      { b.status = status }

const liveReloadScript = `
<script>
  (function() {
    const socket = new WebSocket("ws://" + window.location.host + "/ws");
    socket.onmessage = function(event) {
      if (event.data === "reload") {
        window.location.reload();
      }
    };
    socket.onerror = function() {
      console.error("Live reload connection lost. Restart 'aurelsite serve'.");
    };
  })();
</script>
`
