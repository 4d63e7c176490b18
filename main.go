package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	apiAddr         = flag.String("api", ":8080", "admin API addr")
	wsAddr          = flag.String("ws", ":8082", "WebSocket server addr")
	metricsAddr     = flag.String("metrics", ":2112", "metrics addr")
	catalogURL      = flag.String("catalog", "", "upstream stream-schema endpoint (empty disables refresh)")
	catalogSeed     = flag.String("catalog_seed", "", "JSON file of stream schemas to seed the catalog")
	catalogInterval = flag.Int("catalog_interval_s", 60, "catalog refresh interval in seconds")
	sessionTTL      = flag.Int("session_ttl_min", 60, "idle builder session TTL in minutes")
	authRequired    = flag.Bool("auth", false, "require JWT auth on mutating endpoints and WebSocket")
)

type logResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *logResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *logResponseWriter) Write(b []byte) (int, error) {
	if lrw.statusCode == 0 {
		lrw.statusCode = 200
	}
	return lrw.ResponseWriter.Write(b)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &logResponseWriter{ResponseWriter: w}
		next.ServeHTTP(lrw, r)
		if lrw.statusCode == 0 {
			lrw.statusCode = 200
		}
		LogHTTPResponse(lrw.statusCode, r.Method, r.URL.Path, time.Since(start), map[string]interface{}{
			"remote_addr": r.RemoteAddr,
		})
	})
}

func main() {
	flag.Parse()

	// Override flags with environment variables if set
	if v := os.Getenv("API_PORT"); v != "" {
		*apiAddr = ":" + v
	}
	if v := os.Getenv("WS_PORT"); v != "" {
		*wsAddr = ":" + v
	}
	if v := os.Getenv("CATALOG_URL"); v != "" {
		*catalogURL = v
	}
	if v := os.Getenv("CATALOG_SEED"); v != "" {
		*catalogSeed = v
	}
	if v := os.Getenv("SESSION_TTL_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*sessionTTL = n
		}
	}
	if os.Getenv("AUTH_REQUIRED") == "true" {
		*authRequired = true
	}

	// Start metrics server
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.Printf("metrics at %s", *metricsAddr)
		log.Fatal(http.ListenAndServe(*metricsAddr, nil))
	}()

	registry := NewSessionRegistry(time.Duration(*sessionTTL) * time.Minute)

	catalog := NewFieldCatalog(*catalogURL)
	if *catalogSeed != "" {
		if err := catalog.SeedFromFile(*catalogSeed); err != nil {
			LogError(err, "Failed to seed field catalog", map[string]interface{}{
				"path": *catalogSeed,
			})
		}
	}
	if *catalogURL != "" {
		if err := catalog.Refresh(); err != nil {
			LogWarn("Initial catalog refresh failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		go catalog.RefreshLoop(time.Duration(*catalogInterval)*time.Second, make(chan struct{}))
	}
	// Cross-axis move validation only once the catalog knows any streams;
	// until then every field name passes.
	registry.SetFieldValidator(func(name string) bool {
		return catalog.Empty() || catalog.HasField(name)
	})

	hub := NewWebSocketHub(registry)
	go hub.Run()

	users := NewUserStore()
	authHandler := NewAuthHandler(users)

	// maybeAuth wraps handlers with JWT checking when -auth is set
	maybeAuth := func(h http.HandlerFunc, role string) http.HandlerFunc {
		if !*authRequired {
			return h
		}
		return AuthMiddleware(authHandler, h, role)
	}

	// Admin API
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Auth endpoints
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/register", authHandler.Register)

	// Chart types and their axis capacity limits
	mux.HandleFunc("/api/chart-types", func(w http.ResponseWriter, r *http.Request) {
		chartTypes := []string{
			ChartBar, ChartLine, ChartArea, ChartScatter, ChartHBar,
			ChartStacked, ChartAreaStacked, ChartHStacked,
			ChartPie, ChartDonut, ChartMetric, ChartHeatmap, ChartTable,
			ChartGeomap, ChartMaps, ChartSankey,
		}
		var out []map[string]interface{}
		for _, ct := range chartTypes {
			axes := axesForChartType(ct)
			limits := make(map[string]int, len(axes))
			for _, axis := range axes {
				limits[axis] = MaxFields(ct, axis)
			}
			out = append(out, map[string]interface{}{
				"chart_type": ct,
				"axes":       axes,
				"max_fields": limits,
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"chart_types": out})
	})

	// Stream catalog endpoints
	mux.HandleFunc("/api/streams", func(w http.ResponseWriter, r *http.Request) {
		stream := r.URL.Query().Get("stream")
		if stream != "" {
			json.NewEncoder(w).Encode(StreamSchema{
				Stream: stream,
				Fields: catalog.Fields(stream),
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"streams": catalog.Streams()})
	})
	mux.HandleFunc("/api/catalog/refresh", maybeAuth(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "method not allowed", 405)
			return
		}
		if err := catalog.Refresh(); err != nil {
			http.Error(w, fmt.Sprintf("refresh error: %v", err), 502)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"streams": catalog.Streams()})
	}, "editor"))

	// Session collection
	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			var sessions []map[string]interface{}
			for _, s := range registry.List() {
				sessions = append(sessions, map[string]interface{}{
					"session_id": s.ID,
					"chart_type": s.ChartType,
				})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"sessions": sessions})
		case "POST":
			maybeAuth(func(w http.ResponseWriter, r *http.Request) {
				var req struct {
					ChartType string `json:"chart_type"`
				}
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					http.Error(w, fmt.Sprintf("invalid request: %v", err), 400)
					return
				}
				if req.ChartType == "" {
					req.ChartType = ChartBar
				}
				session := registry.Create(req.ChartType, nil)
				session.SetNotify(hub.NotifierFor(session.ID))
				json.NewEncoder(w).Encode(session.Snapshot())
			}, "editor")(w, r)
		default:
			http.Error(w, "method not allowed", 405)
		}
	})

	// Per-session operations:
	//   GET    /api/sessions/{id}          state snapshot
	//   DELETE /api/sessions/{id}          drop the session
	//   POST   /api/sessions/{id}/events   apply a drag event without a socket
	//   GET    /api/sessions/{id}/export   LZ4-framed snapshot
	mux.HandleFunc("/api/sessions/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
		if len(parts) < 4 {
			http.Error(w, "bad request", 400)
			return
		}
		sessionID := parts[3]
		session, ok := registry.Get(sessionID)
		if !ok {
			http.Error(w, "session not found", 404)
			return
		}

		action := ""
		if len(parts) >= 5 {
			action = parts[4]
		}

		switch {
		case action == "" && r.Method == "GET":
			json.NewEncoder(w).Encode(session.Snapshot())
		case action == "" && r.Method == "DELETE":
			maybeAuth(func(w http.ResponseWriter, r *http.Request) {
				registry.Delete(sessionID)
				w.WriteHeader(204)
			}, "editor")(w, r)
		case action == "events" && r.Method == "POST":
			var ev DragEvent
			if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
				http.Error(w, fmt.Sprintf("invalid request: %v", err), 400)
				return
			}
			ev.SessionID = sessionID
			dragEventsTotal.WithLabelValues(ev.Type).Inc()
			before := session.Mutations()
			ack, err := session.HandleEvent(ev)
			if err != nil {
				http.Error(w, err.Error(), 400)
				return
			}
			if session.Mutations() != before {
				hub.Broadcast("session:"+sessionID, session.Snapshot())
			}
			json.NewEncoder(w).Encode(ack)
		case action == "export" && r.Method == "GET":
			data, err := json.Marshal(session.Snapshot())
			if err != nil {
				http.Error(w, fmt.Sprintf("export error: %v", err), 500)
				return
			}
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write(compressLZ4(data))
		default:
			http.Error(w, "method not allowed", 405)
		}
	})

	go func() {
		log.Printf("admin API at %s", *apiAddr)
		log.Fatal(http.ListenAndServe(*apiAddr, withLogging(mux)))
	}()

	// WebSocket server carries the drag event stream
	wsMux := http.NewServeMux()
	var wsAuth *AuthHandler
	if *authRequired {
		wsAuth = authHandler
	}
	wsMux.HandleFunc("/ws", handleWebSocket(hub, wsAuth))
	LogInfo("Panel builder agent started", map[string]interface{}{
		"api":     *apiAddr,
		"ws":      *wsAddr,
		"metrics": *metricsAddr,
	})
	log.Printf("WebSocket server at %s", *wsAddr)
	log.Fatal(http.ListenAndServe(*wsAddr, wsMux))
}
