// Terminal client for go-postboard
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-while/go-postboard/internal/board"
	"github.com/go-while/go-postboard/internal/config"
	"github.com/go-while/go-postboard/internal/models"
	"github.com/go-while/go-postboard/internal/postapi"
	"github.com/go-while/go-postboard/internal/termview"
)

var appVersion = "-unset-"

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] list\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "       %s [flags] post -title <title> -content <content>\n\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	config.AppVersion = appVersion
	var (
		configFile = flag.String("config", "", "YAML config file (optional)")
		envFile    = flag.String("env", ".env", "environment file with POSTBOARD_* variables, ignored if missing")
		apiURL     = flag.String("api", "", "posts API base URL (default: http://localhost:5000)")
		locale     = flag.String("locale", "", "locale of post dates, e.g. en-US")
		timeZone   = flag.String("tz", "", "time zone of post dates (default: Local)")
		verbose    = flag.Bool("v", false, "log diagnostics to stderr")
	)
	flag.Usage = usage
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	mainConfig := config.NewDefaultConfig()
	if *configFile != "" {
		cfg, err := config.LoadFile(*configFile)
		if err != nil {
			fatalf("%v", err)
		}
		mainConfig = cfg
	}
	if err := mainConfig.ApplyEnv(*envFile); err != nil {
		fatalf("invalid environment: %v", err)
	}
	if *apiURL != "" {
		mainConfig.API.BaseURL = *apiURL
	}
	if *locale != "" {
		mainConfig.Display.Locale = *locale
	}
	if *timeZone != "" {
		mainConfig.Display.TimeZone = *timeZone
	}

	client, err := postapi.NewClient(mainConfig.API.BaseURL, postapi.Options{
		Timeout:       mainConfig.API.Timeout,
		ProxyAddr:     mainConfig.API.ProxyAddr,
		ProxyUsername: mainConfig.API.ProxyUsername,
		ProxyPassword: mainConfig.API.ProxyPassword,
		UserAgent:     "go-postboard-cli/" + appVersion,
	})
	if err != nil {
		fatalf("%v", err)
	}
	dates, err := models.NewDateFormatter(mainConfig.Display.Locale, mainConfig.Display.TimeZone)
	if err != nil {
		fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	var title, content string
	switch args[0] {
	case "list":
	case "post":
		fs := flag.NewFlagSet("post", flag.ExitOnError)
		fs.StringVar(&title, "title", "", "post title")
		fs.StringVar(&content, "content", "", "post content")
		fs.Parse(args[1:])
	default:
		usage()
		os.Exit(2)
	}

	view := termview.NewForFile(os.Stdout)
	h := board.Handles{Title: board.NewField(title), Content: board.NewField(content), Posts: view}
	ctrl, err := board.New(client, h, termview.Notifier{W: os.Stderr}, board.Config{Dates: dates})
	if err != nil {
		fatalf("%v", err)
	}

	if args[0] == "list" {
		if err := ctrl.Start(ctx); err != nil {
			os.Exit(1)
		}
		return
	}
	if outcome, _ := ctrl.Submit(ctx); outcome != board.OutcomeReloaded {
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "postboard: "+format+"\n", args...)
	os.Exit(1)
}
