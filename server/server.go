package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/vi-replay/logger"
	"github.com/lixenwraith/vi-replay/timeline"
)

// replayExts are tried in order when resolving an ID to a file
var replayExts = []string{".jsonl", ".ndjson", ".jsonl.zst"}

var (
	errBadID    = errors.New("replay id must be a non-negative integer")
	errNotFound = errors.New("replay not found")
)

// Config configures the replay HTTP server
type Config struct {
	ReplayDir string
	Period    time.Duration
	Palette   timeline.Palette
}

// Server serves stored replays and websocket spectating sessions
type Server struct {
	cfg      Config
	mux      *http.ServeMux
	upgrader websocket.Upgrader
}

// New builds the handler tree
func New(cfg Config) *Server {
	if cfg.Palette == (timeline.Palette{}) {
		cfg.Palette = timeline.DefaultPalette
	}
	s := &Server{
		cfg: cfg,
		mux: http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})
	s.mux.HandleFunc("GET /replays", s.handleList)
	s.mux.HandleFunc("GET /replay/{id}", s.handleReplay)
	s.mux.HandleFunc("GET /spectate/{id}", s.handleSpectate)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	path, err := s.resolve(r.PathValue("id"))
	if err != nil {
		replayError(w, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		httpError(w, "failed to open replay", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		httpError(w, "failed to stat replay", http.StatusInternalServerError)
		return
	}

	contentType := "application/x-ndjson"
	if strings.HasSuffix(path, ".zst") {
		contentType = "application/zstd"
	}
	w.Header().Set("Content-Type", contentType)
	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), f)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.list()
	if err != nil {
		logger.Log.WithError(err).Warn("list replays")
		httpError(w, "failed to list replays", http.StatusInternalServerError)
		return
	}

	data, err := json.Marshal(ids)
	if err != nil {
		httpError(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// resolve maps a numeric ID to the first existing replay file
func (s *Server) resolve(raw string) (string, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return "", errBadID
	}
	stem := strconv.FormatUint(id, 10)
	for _, ext := range replayExts {
		path := filepath.Join(s.cfg.ReplayDir, stem+ext)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", errNotFound
}

// list returns the IDs of all replay files, ascending
func (s *Server) list() ([]uint64, error) {
	entries, err := os.ReadDir(s.cfg.ReplayDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []uint64{}, nil
		}
		return nil, err
	}

	ids := []uint64{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		for _, ext := range replayExts {
			stem, ok := strings.CutSuffix(entry.Name(), ext)
			if !ok {
				continue
			}
			if id, err := strconv.ParseUint(stem, 10, 64); err == nil {
				ids = append(ids, id)
			}
			break
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func replayError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBadID):
		httpError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, errNotFound):
		httpError(w, err.Error(), http.StatusNotFound)
	default:
		httpError(w, "internal error", http.StatusInternalServerError)
	}
}

func httpError(w http.ResponseWriter, msg string, code int) {
	http.Error(w, msg, code)
}
