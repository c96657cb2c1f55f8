// Web board server for go-postboard
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	prof "github.com/go-while/go-cpu-mem-profiler"
	"github.com/go-while/go-postboard/internal/config"
	"github.com/go-while/go-postboard/internal/models"
	"github.com/go-while/go-postboard/internal/postapi"
	"github.com/go-while/go-postboard/internal/web"
)

var (
	// command-line flags
	configFile  string
	envFile     string
	webport     int
	webssl      bool
	webcertFile string
	webkeyFile  string
	apiURL      string
	apiTimeout  time.Duration
	proxyAddr   string
	locale      string
	timeZone    string
	siteTitle   string
	debug       bool
	pprofAddr   string

	maxRenderCache       int
	maxRenderCacheExpiry int
)

var appVersion = "-unset-"

func main() {
	config.AppVersion = appVersion

	flag.StringVar(&configFile, "config", "", "YAML config file (optional)")
	flag.StringVar(&envFile, "env", ".env", "environment file with POSTBOARD_* variables, ignored if missing")
	flag.IntVar(&webport, "webport", 0, "Web server port (default: 11980)")
	flag.BoolVar(&webssl, "webssl", false, "Enable SSL")
	flag.StringVar(&webcertFile, "websslcert", "", "SSL certificate file (/path/to/fullchain.pem)")
	flag.StringVar(&webkeyFile, "websslkey", "", "SSL key file (/path/to/privkey.pem)")
	flag.StringVar(&apiURL, "api", "", "posts API base URL (default: http://localhost:5000)")
	flag.DurationVar(&apiTimeout, "api-timeout", -1, "posts API request timeout, 0 = none (default: from config)")
	flag.StringVar(&proxyAddr, "proxy", "", "SOCKS5 proxy for the posts API (host:port)")
	flag.StringVar(&locale, "locale", "", "locale of post dates, e.g. en-US, de-DE")
	flag.StringVar(&timeZone, "tz", "", "time zone of post dates, e.g. Europe/Berlin (default: Local)")
	flag.StringVar(&siteTitle, "title", "", "site title")
	flag.BoolVar(&debug, "debug", false, "gin debug mode")
	flag.StringVar(&pprofAddr, "pprof", "", "serve pprof on this address, e.g. :51111")
	flag.IntVar(&maxRenderCache, "maxrendercache", 4096, "maximum number of cached rendered post contents, 0 disables (default: 4096)")
	flag.IntVar(&maxRenderCacheExpiry, "maxrendercacheexpiry", 30, "expiry of cached rendered post contents in minutes (default: 30 minutes)")
	flag.Parse()

	log.Printf("Starting go-postboard: Web Server (version: %s)", appVersion)

	mainConfig := config.NewDefaultConfig()
	if configFile != "" {
		cfg, err := config.LoadFile(configFile)
		if err != nil {
			log.Fatalf("[WEB]: %v", err)
		}
		mainConfig = cfg
	}
	if err := mainConfig.ApplyEnv(envFile); err != nil {
		log.Fatalf("[WEB]: Invalid environment: %v", err)
	}

	// Override config with command-line flags if provided
	webConfig := &mainConfig.Web
	if webport > 0 {
		webConfig.ListenPort = webport
		log.Printf("[WEB]: Overriding listen port with command-line flag: %d", webConfig.ListenPort)
	}
	if webssl {
		webConfig.SSL = true
		log.Printf("[WEB]: SSL enabled via command-line flag")
	}
	if webcertFile != "" {
		webConfig.CertFile = webcertFile
	}
	if webkeyFile != "" {
		webConfig.KeyFile = webkeyFile
	}
	if debug {
		webConfig.Debug = true
	}
	if apiURL != "" {
		mainConfig.API.BaseURL = apiURL
	}
	if apiTimeout >= 0 {
		mainConfig.API.Timeout = apiTimeout
	}
	if proxyAddr != "" {
		mainConfig.API.ProxyAddr = proxyAddr
	}
	if locale != "" {
		mainConfig.Display.Locale = locale
	}
	if timeZone != "" {
		mainConfig.Display.TimeZone = timeZone
	}
	if siteTitle != "" {
		mainConfig.Display.SiteTitle = siteTitle
	}
	if err := mainConfig.Validate(); err != nil {
		log.Fatalf("[WEB]: %v", err)
	}
	log.Printf("[WEB]: Using WEB configuration: port=%d ssl=%t api=%s timeout=%s", webConfig.ListenPort, webConfig.SSL, mainConfig.API.BaseURL, mainConfig.API.Timeout)

	if pprofAddr != "" {
		Prof := prof.NewProf()
		go Prof.PprofWeb(pprofAddr)
		log.Printf("[WEB]: pprof listening on %s", pprofAddr)
	}

	models.InitRenderCache(maxRenderCache, time.Duration(maxRenderCacheExpiry)*time.Minute)

	client, err := postapi.NewClient(mainConfig.API.BaseURL, postapi.Options{
		Timeout:       mainConfig.API.Timeout,
		ProxyAddr:     mainConfig.API.ProxyAddr,
		ProxyUsername: mainConfig.API.ProxyUsername,
		ProxyPassword: mainConfig.API.ProxyPassword,
		UserAgent:     "go-postboard/" + appVersion,
	})
	if err != nil {
		log.Fatalf("[WEB]: Failed to create posts API client: %v", err)
	}

	server, err := web.NewServer(client, webConfig, &mainConfig.Display)
	if err != nil {
		log.Fatalf("[WEB]: Failed to create web server: %v", err)
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start web server in goroutine to make it non-blocking
	webServerErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			webServerErrChan <- err
		}
	}()

	log.Printf("[WEB]: Server started successfully. Press Ctrl+C to gracefully shutdown...")

	select {
	case <-sigChan:
		log.Printf("[WEB]: Received shutdown signal, initiating graceful shutdown...")
	case err := <-webServerErrChan:
		log.Fatalf("[WEB]: Failed to start web server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[WEB]: Error during shutdown: %v", err)
	}
	log.Printf("[WEB]: Graceful shutdown completed")
} // end main
