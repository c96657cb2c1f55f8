// Reference posts API server for go-postboard, backed by sqlite
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
	"github.com/go-while/go-postboard/internal/database"
	"github.com/go-while/go-postboard/internal/postsrv"
)

var appVersion = "-unset-"

func main() {
	config.AppVersion = appVersion
	var (
		configFile = flag.String("config", "", "YAML config file (optional)")
		envFile    = flag.String("env", ".env", "environment file with POSTBOARD_* variables, ignored if missing")
		port       = flag.Int("port", 0, "listen port (default: 5000)")
		dbPath     = flag.String("db", "", "sqlite database file (default: data/posts.sq3)")
		debug      = flag.Bool("debug", false, "gin debug mode")
		pprofAddr  = flag.String("pprof", "", "serve pprof on this address, e.g. :51112")
	)
	flag.Parse()
	log.Printf("Starting go-postboard: Posts API (version: %s)", appVersion)

	mainConfig := config.NewDefaultConfig()
	if *configFile != "" {
		cfg, err := config.LoadFile(*configFile)
		if err != nil {
			log.Fatalf("[POSTSAPI]: %v", err)
		}
		mainConfig = cfg
	}
	if err := mainConfig.ApplyEnv(*envFile); err != nil {
		log.Fatalf("[POSTSAPI]: Invalid environment: %v", err)
	}
	if *port > 0 {
		mainConfig.API.ListenPort = *port
	}
	if *dbPath != "" {
		mainConfig.Database.Path = *dbPath
	}
	if err := mainConfig.Validate(); err != nil {
		log.Fatalf("[POSTSAPI]: %v", err)
	}

	if *pprofAddr != "" {
		Prof := prof.NewProf()
		go Prof.PprofWeb(*pprofAddr)
	}

	dbconfig := database.DefaultDBConfig()
	dbconfig.Path = mainConfig.Database.Path
	dbconfig.AppVersion = appVersion
	db, err := database.OpenDatabase(dbconfig)
	if err != nil {
		log.Fatalf("[POSTSAPI]: Failed to open database: %v", err)
	}

	server := postsrv.NewServer(db, &mainConfig.API, *debug)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Printf("[POSTSAPI]: Received shutdown signal, initiating graceful shutdown...")
	case err := <-errChan:
		log.Printf("[POSTSAPI]: Server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[POSTSAPI]: Error during shutdown: %v", err)
	}
	if err := db.Shutdown(); err != nil {
		log.Fatalf("[POSTSAPI]: Failed to shutdown database: %v", err)
	}
	log.Printf("[POSTSAPI]: Graceful shutdown completed")
}
