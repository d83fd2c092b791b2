package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/IslamTayeb/job-sheet-tracker/internal/config"
	"github.com/IslamTayeb/job-sheet-tracker/internal/extract"
	"github.com/IslamTayeb/job-sheet-tracker/internal/mailbox"
	"github.com/IslamTayeb/job-sheet-tracker/internal/resolve"
	"github.com/IslamTayeb/job-sheet-tracker/internal/sheet"
	"github.com/IslamTayeb/job-sheet-tracker/internal/track"
)

func main() {
	args := os.Args[1:]

	// Shortcut: `jobtrack 25` == `jobtrack process 25`.
	if len(args) == 1 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			processCommand(n)
			return
		}
	}

	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "process":
		fs := flag.NewFlagSet("process", flag.ExitOnError)
		fs.Parse(args[1:])
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "usage: jobtrack process <count>")
			os.Exit(2)
		}
		n, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, "count must be an integer")
			os.Exit(2)
		}
		processCommand(n)
	case "config":
		configCommand(args[1:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Job application tracker

Usage:
  jobtrack process <count>   process the <count> most recent emails
  jobtrack <count>           shorthand for the above
  jobtrack config [flags]    show or update configuration`)
}

func processCommand(n int) {
	if n <= 0 {
		fmt.Fprintln(os.Stderr, "Number of emails must be positive")
		os.Exit(1)
	}

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var tokenSource oauth2.TokenSource
	if cfg.Google.RefreshToken != "" {
		tokenSource = googleTokenSource(ctx, cfg)
	}

	source := mailbox.New(mailbox.Options{
		Host:        cfg.IMAP.Host,
		Email:       cfg.IMAP.Email,
		AppPassword: cfg.IMAP.AppPassword,
		TokenSource: tokenSource,
	})

	extractor := extract.New(extract.NewClient(extract.LLMConfig{
		APIBase:     cfg.LLM.APIBase,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}))

	var store sheet.Store
	var sheetsStore *sheet.SheetsStore
	if cfg.Sheet.SpreadsheetID != "" {
		sheetsStore = sheet.NewSheetsStore(oauth2.NewClient(ctx, tokenSource), cfg.Sheet.SpreadsheetID, cfg.Sheet.Range)
		store = sheetsStore
	} else {
		store = sheet.NewCSVStore(cfg.Sheet.CSVFile)
	}

	resolver := resolve.New(os.Stdin, os.Stdout)

	pipeline := track.New(source, extractor, resolver, store)
	report, err := pipeline.Run(ctx, n)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}

	report.Print(os.Stdout)
	if sheetsStore != nil {
		fmt.Printf("\nView your sheet: %s\n", sheetsStore.URL())
	}
}

func googleTokenSource(ctx context.Context, cfg *config.Config) oauth2.TokenSource {
	conf := &oauth2.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}
	return conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.Google.RefreshToken})
}

func configCommand(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	email := fs.String("email", "", "mailbox address")
	appPassword := fs.String("app-password", "", "IMAP app password")
	clientID := fs.String("client-id", "", "Google OAuth client id")
	clientSecret := fs.String("client-secret", "", "Google OAuth client secret")
	refreshToken := fs.String("refresh-token", "", "Google OAuth refresh token")
	apiKey := fs.String("gemini-api-key", "", "language model API key")
	sheetsID := fs.String("sheets-id", "", "Google Sheets spreadsheet id")
	csvFile := fs.String("csv", "", "local CSV file used when no sheet id is set")
	fs.Parse(args)

	path := config.DefaultPath()
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	changed := false
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
			changed = true
		}
	}
	set(&cfg.IMAP.Email, *email)
	set(&cfg.IMAP.AppPassword, *appPassword)
	set(&cfg.Google.ClientID, *clientID)
	set(&cfg.Google.ClientSecret, *clientSecret)
	set(&cfg.Google.RefreshToken, *refreshToken)
	set(&cfg.LLM.APIKey, *apiKey)
	set(&cfg.Sheet.SpreadsheetID, *sheetsID)
	set(&cfg.Sheet.CSVFile, *csvFile)

	if changed {
		if err := config.SaveAtomic(path, cfg); err != nil {
			log.Fatalf("save config: %v", err)
		}
		fmt.Printf("Configuration saved to %s\n", path)
		return
	}

	fmt.Println("Current configuration:")
	fmt.Printf("  Email:            %s\n", orNotSet(cfg.IMAP.Email))
	fmt.Printf("  App password:     %s\n", setOrNot(cfg.IMAP.AppPassword))
	fmt.Printf("  OAuth client:     %s\n", setOrNot(cfg.Google.ClientID))
	fmt.Printf("  Refresh token:    %s\n", setOrNot(cfg.Google.RefreshToken))
	fmt.Printf("  LLM API key:      %s\n", setOrNot(cfg.LLM.APIKey))
	fmt.Printf("  Spreadsheet ID:   %s\n", orNotSet(cfg.Sheet.SpreadsheetID))
	fmt.Printf("  CSV file:         %s\n", orNotSet(cfg.Sheet.CSVFile))
	fmt.Println("\nUse 'jobtrack config -help' for configuration options.")
}

func orNotSet(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}

func setOrNot(s string) string {
	if s == "" {
		return "Not set"
	}
	return "Set"
}
