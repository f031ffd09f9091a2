// Command jodytama starts the Jody-Tama game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, config directory, debug logging, version output,
// optional ngrok tunneling and an optional NATS event feed.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/jodytama/api"
	"github.com/wricardo/jodytama/game/config"
	"github.com/wricardo/jodytama/game/service"
	"github.com/wricardo/jodytama/game/session"
	"github.com/wricardo/jodytama/transport/mcp"
	"github.com/wricardo/jodytama/transport/natsbus"
	"github.com/wricardo/jodytama/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Jody-Tama Game Server"
)

const (
	sessionMaxAge   = 24 * time.Hour
	cleanupInterval = time.Hour
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	configDir    = flag.String("config-dir", "configs", "Directory containing rule variants (or use CONFIG_DIR env var)")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
	natsURL      = flag.String("nats-url", "", "NATS server URL for the game event feed, disabled when empty (or use NATS_URL env var)")
	natsPrefix   = flag.String("nats-prefix", natsbus.DefaultSubjectPrefix, "NATS subject prefix for game events (or use NATS_PREFIX env var)")
)

// envFlags maps flag names to the environment variables that back them
var envFlags = map[string]string{
	"config-dir":  "CONFIG_DIR",
	"nats-url":    "NATS_URL",
	"nats-prefix": "NATS_PREFIX",
}

// applyEnv fills flags left unset on the command line from the environment.
// It must run after godotenv.Load so values from .env are seen.
func applyEnv(fs *flag.FlagSet) error {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	for name, key := range envFlags {
		if set[name] {
			continue
		}
		if v := os.Getenv(key); v != "" {
			if err := fs.Set(name, v); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
	}
	return nil
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                  # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090                       # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -nats-url nats://localhost:4222  # Also publish game events to NATS\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp                        # Run MCP stdio server\n", os.Args[0])
	}
}

// newLogger builds a development logger with -debug and a production one otherwise.
// In stdio mode stdout carries the MCP protocol, so logs always go to stderr.
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// mode maps the first positional argument to a run mode.
func mode(args []string) (string, error) {
	if len(args) == 0 {
		return "server", nil
	}
	switch args[0] {
	case "server", "http":
		return "server", nil
	case "stdio-mcp", "mcp-stdio", "mcp":
		return "stdio-mcp", nil
	}
	return "", fmt.Errorf("unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", args[0])
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	envErr := godotenv.Load()

	flag.Parse()
	applyErr := applyEnv(flag.CommandLine)

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	// Missing .env is fine
	if envErr == nil {
		logger.Info("loaded environment variables from .env file")
	} else if !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("error loading .env file", zap.Error(envErr))
	}

	if applyErr != nil {
		logger.Fatal("invalid environment", zap.Error(applyErr))
	}

	runMode, err := mode(flag.Args())
	if err != nil {
		logger.Fatal("invalid mode", zap.Error(err))
	}

	logger.Info("starting", zap.String("app", AppName), zap.String("version", Version), zap.String("mode", runMode))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	gameService, closeServices, err := initializeServices(ctx, logger, hub)
	if err != nil {
		logger.Fatal("failed to initialize services", zap.Error(err))
	}
	defer closeServices()

	switch runMode {
	case "stdio-mcp":
		err = runStdioMCPWithInternalServer(ctx, logger, gameService, hub)
	default:
		err = runHTTPServer(ctx, logger, gameService, hub)
	}
	if err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		closeServices()
		os.Exit(1)
	}
}

// newMCPHandler serves MCP JSON-RPC messages posted to /mcp.
func newMCPHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRouter mounts the REST API at the root and the MCP proxy at /mcp.
func newRouter(gameService service.GameService, hub *websocket.Hub, logger *zap.Logger, baseURL string) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(gameService, hub, logger))
	mainRouter.HandleFunc("/mcp", newMCPHandler(mcp.NewClient(baseURL)))
	return mainRouter
}

// ngrokSettings resolves the tunnel options from flags, then the environment.
func ngrokSettings() (enabled bool, authToken, domain string) {
	enabled = *ngrokEnabled
	if !enabled {
		if env := os.Getenv("NGROK_ENABLED"); env == "true" || env == "1" {
			enabled = true
		}
	}

	authToken = *ngrokAuth
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
	}
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTH_TOKEN")
	}

	domain = *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}
	return enabled, authToken, domain
}

// runNgrok serves handler through an ngrok tunnel until ctx is done.
func runNgrok(ctx context.Context, logger *zap.Logger, handler http.Handler, authToken, domain string) {
	logger.Info("starting ngrok tunnel")

	tunnel := ngrokConfig.HTTPEndpoint()
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("using custom ngrok domain", zap.String("domain", domain))
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}
	url := tun.URL()
	logger.Info("ngrok tunnel established",
		zap.String("api", url+"/api"),
		zap.String("websocket", strings.Replace(url, "http", "ws", 1)+"/ws?session=<session_id>"),
		zap.String("mcp", url+"/mcp"),
	)

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Warn("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, logger *zap.Logger, gameService service.GameService, hub *websocket.Hub) error {
	addr := fmt.Sprintf("%s:%d", *host, *port)
	handler := newRouter(gameService, hub, logger, "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("api", "http://"+addr+"/api"),
			zap.String("websocket", "ws://"+addr+"/ws?session=<session_id>"),
			zap.String("mcp", "http://"+addr+"/mcp"),
		)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if enabled, authToken, domain := ngrokSettings(); enabled {
		if authToken == "" {
			logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				runNgrok(ctx, logger, handler, authToken, domain)
			}()
		}
	}

	var err error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(shutdownErr))
	}

	wg.Wait()
	logger.Info("server stopped")
	return err
}

// initializeServices wires the session and config managers, the event
// publishers and the game service. It also starts the background routine
// that prunes stale sessions. The returned func releases the publishers.
func initializeServices(ctx context.Context, logger *zap.Logger, hub *websocket.Hub) (service.GameService, func(), error) {
	configManager, err := config.NewManager(*configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()

	opts := []service.Option{service.WithLogger(logger)}
	if hub != nil {
		opts = append(opts, service.WithPublisher(hub))
	}

	closeFn := func() {}
	if *natsURL != "" {
		publisher, err := natsbus.Connect(*natsURL, natsbus.WithSubjectPrefix(*natsPrefix), natsbus.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, service.WithPublisher(publisher))
		var once sync.Once
		closeFn = func() {
			once.Do(func() {
				if err := publisher.Close(); err != nil {
					logger.Warn("failed to drain NATS connection", zap.Error(err))
				}
			})
		}
	}

	gameService := service.NewGameService(sessionManager, configManager, opts...)

	go sessionCleanupRoutine(ctx, logger, sessionManager, cleanupInterval, sessionMaxAge)

	return gameService, closeFn, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within maxAge, until ctx is done.
func sessionCleanupRoutine(ctx context.Context, logger *zap.Logger, manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				logger.Info("cleaned up expired sessions", zap.Int("removed", removed))
			}
		}
	}
}

// startInternalServer serves the REST API on a random loopback port and
// returns its base URL.
func startInternalServer(ctx context.Context, logger *zap.Logger, gameService service.GameService, hub *websocket.Hub) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}

	baseURL := "http://" + listener.Addr().String()
	httpServer := &http.Server{Handler: api.NewServer(gameService, hub, logger)}

	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("internal HTTP server error", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	logger.Info("internal HTTP server started for MCP stdio", zap.String("url", baseURL))
	return baseURL, nil
}

// externalAPIAvailable reports whether a Jody-Tama API already answers at baseURL.
func externalAPIAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at the configured host and port; if unavailable, it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, logger *zap.Logger, gameService service.GameService, hub *websocket.Hub) error {
	baseURL := fmt.Sprintf("http://%s:%d", *host, *port)
	logger.Info("checking for external API server", zap.String("url", baseURL))

	if externalAPIAvailable(baseURL) {
		logger.Info("MCP stdio server ready (using external HTTP server)", zap.String("url", baseURL))
	} else {
		var err error
		baseURL, err = startInternalServer(ctx, logger, gameService, hub)
		if err != nil {
			return err
		}
		logger.Info("MCP stdio server ready (using internal HTTP server)")
	}

	return server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer())
}
