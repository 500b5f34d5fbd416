package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"musixport/internal/config"
	"musixport/internal/monochrome"
	"musixport/internal/registry"
	"musixport/internal/report"
	"musixport/internal/resolver"
	"musixport/internal/source"
	"musixport/internal/tidal"
)

/* =========================
   Recovery Middleware
   ========================= */

func RecoveryMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("PANIC: %v\n%s", err, debug.Stack())
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next(w, r)
	}
}

/* =========================
   Types
   ========================= */

type ConvertRequest struct {
	Source     string `json:"source"`
	UserID     string `json:"user_id"`
	PlaylistID string `json:"playlist_id"`
	URL        string `json:"url"`
}

/* =========================
   SSE Helpers
   ========================= */

func setupSSE(w http.ResponseWriter) (http.Flusher, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming unsupported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	return flusher, nil
}

func sendEvent(w http.ResponseWriter, flusher http.Flusher, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		log.Println("SSE marshal error:", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", b)
	flusher.Flush()
}

/* =========================
   Handler
   ========================= */

type server struct {
	cfg         config.Config
	tidalClient *tidal.Client
	reg         *registry.Registry
	spotify     *spotify.Client
}

func (s *server) buildSource(req ConvertRequest) (source.Source, error) {
	switch req.Source {
	case "deezer":
		if req.UserID == "" && req.PlaylistID == "" {
			return nil, fmt.Errorf("deezer requires user_id or playlist_id")
		}
		return source.NewDeezer(req.UserID, req.PlaylistID), nil

	case "spotify":
		if s.spotify == nil {
			return nil, fmt.Errorf("spotify source disabled: no credentials configured")
		}
		parsed, err := url.Parse(req.URL)
		if err != nil || parsed.Host == "" || !strings.Contains(parsed.Host, "spotify.com") {
			return nil, fmt.Errorf("invalid spotify URL")
		}
		return source.NewSpotify(s.spotify, req.URL), nil

	case "youtube":
		parsed, err := url.Parse(req.URL)
		if err != nil || parsed.Host == "" ||
			(!strings.Contains(parsed.Host, "youtube.com") && !strings.Contains(parsed.Host, "youtu.be")) {
			return nil, fmt.Errorf("invalid youtube URL")
		}
		return source.NewYouTube(req.URL), nil

	default:
		return nil, fmt.Errorf("unsupported source type %q", req.Source)
	}
}

func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx := r.Context()

	/* =========================
	   Parse Request (NO SSE)
	   ========================= */

	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	src, err := s.buildSource(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	/* =========================
	   SSE Setup (SAFE POINT)
	   ========================= */

	flusher, err := setupSSE(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	send := func(v any) { sendEvent(w, flusher, v) }

	send(map[string]string{
		"status":  "extracting",
		"message": "Fetching library from " + src.Name(),
	})

	lib, err := src.Fetch(ctx)
	if err != nil {
		send(map[string]string{
			"status":  "error",
			"message": "Fetch failed: " + err.Error(),
		})
		return
	}

	/* =========================
	   Resolution
	   ========================= */

	var reg resolver.Registry
	if s.reg != nil {
		reg = s.reg
	}
	res := resolver.New(s.tidalClient, reg)

	progress := func(stage string, done, total, matched int) {
		select {
		case <-ctx.Done():
			return
		default:
		}
		send(map[string]any{
			"status":  "processing",
			"stage":   stage,
			"index":   done,
			"total":   total,
			"matched": matched,
		})
	}

	converted, misses := res.ConvertLibrary(ctx, lib, progress)

	/* =========================
	   Artifacts
	   ========================= */

	_ = os.MkdirAll(s.cfg.OutputDir, 0o755)
	stamp := time.Now().Format("20060102T150405")

	outFile := filepath.Join(s.cfg.OutputDir, "monochrome_tidal_import-"+stamp+".json")
	if err := monochrome.Write(outFile, converted); err != nil {
		send(map[string]string{
			"status":  "error",
			"message": "Output write failed: " + err.Error(),
		})
		return
	}

	summary := report.Summarize(misses)
	missFile := ""
	if len(misses) > 0 {
		missFile = filepath.Join(s.cfg.OutputDir, "missed_tidal-"+stamp+".json")
		if err := report.WriteDetail(missFile, misses); err != nil {
			log.Printf("missed detail write: %v", err)
			missFile = ""
		}
		for _, line := range summary.Lines() {
			log.Println(line)
		}
	}

	/* =========================
	   Final
	   ========================= */

	send(map[string]any{
		"status": "complete",
		"meta": map[string]any{
			"source":      src.Name(),
			"source_name": lib.Name,
			"output_file": outFile,
			"missed_file": missFile,
			"timestamp":   time.Now().Format(time.RFC3339),
		},
		"matched": map[string]int{
			"tracks":    len(converted.Tracks),
			"albums":    len(converted.Albums),
			"playlists": len(converted.Playlists),
		},
		"missed": summary,
	})
}

/* =========================
   Main
   ========================= */

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfgPath := os.Getenv("MUSIXPORT_CONFIG")
	if cfgPath == "" {
		cfgPath = "musixport.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Tidal.ClientID == "" || cfg.Tidal.ClientSecret == "" {
		log.Fatal("CRITICAL: TIDAL_CLIENT_ID and TIDAL_CLIENT_SECRET must be set")
	}

	// Target-catalog auth is the one fatal setup step: without a token no
	// resolution is possible.
	ctx := context.Background()
	tidalClient, err := tidal.NewClient(ctx, cfg.Tidal.ClientID, cfg.Tidal.ClientSecret, cfg.CountryCode)
	if err != nil {
		log.Fatalf("Failed to authenticate with Tidal: %v", err)
	}

	// The registry is an accelerator, not a requirement.
	reg, err := registry.Open(cfg.DatabasePath)
	if err != nil {
		log.Printf("Registry unavailable, continuing without cache: %v", err)
		reg = nil
	} else {
		defer reg.Close()
	}

	var spotifyClient *spotify.Client
	if cfg.Spotify.ClientID != "" && cfg.Spotify.ClientSecret != "" {
		auth := &clientcredentials.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			TokenURL:     spotifyauth.TokenURL,
		}
		spotifyClient = spotify.New(auth.Client(ctx))
	} else {
		log.Println("Spotify credentials not set; spotify source disabled")
	}

	srv := &server{
		cfg:         cfg,
		tidalClient: tidalClient,
		reg:         reg,
		spotify:     spotifyClient,
	}

	http.HandleFunc("/api/v1/convert", RecoveryMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodOptions {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		srv.handleConvert(w, r)
	}))

	log.Printf("musixport listening on :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, nil))
}
