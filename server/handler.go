package server

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/klauspost/compress/gzhttp"

	"github.com/kastheco/marquee/clock"
	"github.com/kastheco/marquee/config"
	"github.com/kastheco/marquee/typewriter"
)

// Catalog is the set of presets the server exposes. *config.PresetFile
// satisfies it.
type Catalog interface {
	Names() []string
	Preset(name string) (config.Animation, error)
}

// PresetInfo is the body of GET /v1/presets/{name}.
type PresetInfo struct {
	Name        string           `json:"name"`
	Fingerprint string           `json:"fingerprint"`
	RestingText string           `json:"resting_text"`
	Animation   config.Animation `json:"animation"`
}

// Options configures NewHandler.
type Options struct {
	Logger *slog.Logger
	Clock  clock.Clock

	// OriginPatterns lists extra origins allowed to open frame streams,
	// for pages served from another host.
	OriginPatterns []string
}

// streamBuffer bounds the frames queued for one websocket client.
const streamBuffer = 32

// NewHandler returns an http.Handler that serves presets and streams
// their animations over websockets.
// It uses Go 1.22+ ServeMux pattern matching for method+path routing.
func NewHandler(presets Catalog, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// List preset names
	mux.Handle("GET /v1/presets", gzhttp.GzipHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, presets.Names())
	})))

	// Get one preset
	mux.Handle("GET /v1/presets/{name}", gzhttp.GzipHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		a, err := presets.Preset(name)
		if err != nil {
			writeLookupError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, PresetInfo{
			Name:        name,
			Fingerprint: a.Fingerprint(),
			RestingText: a.EngineConfig().RestingText(),
			Animation:   a,
		})
	})))

	// Stream frames; ?skip=true starts at rest.
	mux.HandleFunc("GET /v1/presets/{name}/stream", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		a, err := presets.Preset(name)
		if err != nil {
			writeLookupError(w, err)
			return
		}
		cfg := a.EngineConfig()
		if v := r.URL.Query().Get("skip"); v != "" {
			skip, err := strconv.ParseBool(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid skip: "+v)
				return
			}
			cfg.SkipAnimation = skip
		}
		if err := cfg.Validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: opts.OriginPatterns})
		if err != nil {
			opts.Logger.Warn("websocket accept failed", "preset", name, "err", err)
			return
		}
		logger := opts.Logger.With("preset", name, "remote", r.RemoteAddr)
		logger.Info("stream opened")
		err = streamFrames(r.Context(), conn, cfg, opts.Clock, logger)
		logger.Info("stream closed", "err", err)
	})

	// Hero page
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("preset")
		if name == "" {
			name = config.DefaultPresetName
		}
		a, err := presets.Preset(name)
		if err != nil {
			writeLookupError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTemplate.Execute(w, indexData{
			Preset:      name,
			Presets:     presets.Names(),
			RestingText: a.EngineConfig().RestingText(),
		}); err != nil {
			opts.Logger.Error("render index", "err", err)
		}
	})

	return mux
}

// streamFrames runs one engine for the lifetime of conn. The engine is
// disposed when the client goes away, the request is cancelled, or the
// animation completes.
func streamFrames(ctx context.Context, conn *websocket.Conn, cfg typewriter.Config, clk clock.Clock, logger *slog.Logger) error {
	ctx = conn.CloseRead(ctx)

	frames := make(chan typewriter.Frame, streamBuffer)
	engine, err := typewriter.New(cfg,
		typewriter.WithClock(clk),
		typewriter.WithLogger(logger),
		typewriter.WithSubscriber(func(f typewriter.Frame) { push(frames, f) }),
	)
	if err != nil {
		conn.Close(websocket.StatusPolicyViolation, "invalid animation")
		return err
	}
	defer engine.Dispose()

	send := func(f typewriter.Frame) (bool, error) {
		if err := wsjson.Write(ctx, conn, f); err != nil {
			return false, err
		}
		if f.Phase == typewriter.PhaseComplete {
			return true, conn.Close(websocket.StatusNormalClosure, "complete")
		}
		return false, nil
	}

	// Ticks may already be queued, so the first frame comes from cfg.
	if done, err := send(typewriter.InitialFrame(cfg)); done || err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "")
			return ctx.Err()
		case f := <-frames:
			if done, err := send(f); done || err != nil {
				return err
			}
		}
	}
}

// push queues f, dropping the oldest queued frame when the client lags.
func push(ch chan typewriter.Frame, f typewriter.Frame) {
	for {
		select {
		case ch <- f:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// writeJSON encodes v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, config.ErrPresetNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

type indexData struct {
	Preset      string
	Presets     []string
	RestingText string
}

// The page renders the resting text server-side so it reads correctly
// without JavaScript, then replaces it with the live stream.
var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>marquee · {{.Preset}}</title>
<style>
  body { background: #232136; color: #e0def4; font-family: system-ui, sans-serif;
         display: grid; place-items: center; min-height: 100vh; margin: 0; }
  h1 { font-size: clamp(1.5rem, 4vw, 3rem); min-height: 1.2em; }
  .caret { display: inline-block; width: .5em; background: #9ccfd8; animation: blink 1s steps(1) infinite; }
  .caret[hidden] { display: none; }
  @keyframes blink { 50% { opacity: 0; } }
  nav a { color: #908caa; margin: 0 .5em; }
</style>
</head>
<body>
<main>
  <h1><span id="text">{{.RestingText}}</span><span class="caret" id="caret" hidden>&nbsp;</span></h1>
  <nav>{{range .Presets}}<a href="/?preset={{.}}">{{.}}</a>{{end}}</nav>
</main>
<script>
  const text = document.getElementById("text");
  const caret = document.getElementById("caret");
  const proto = location.protocol === "https:" ? "wss:" : "ws:";
  const ws = new WebSocket(proto + "//" + location.host + "/v1/presets/{{.Preset}}/stream");
  ws.onmessage = (ev) => {
    const f = JSON.parse(ev.data);
    text.textContent = f.text;
    caret.hidden = !f.show_cursor;
  };
</script>
</body>
</html>
`))
