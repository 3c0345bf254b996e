package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"viewer/frontend/actions"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run posts one action to the viewer and prints the status it reports
// afterwards.
func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sendAction", flag.ContinueOnError)
	fs.SetOutput(out)
	baseURL := fs.String("url", getenv("VIEWER_URL", "http://localhost:8080"), "viewer base URL")
	delay := fs.Duration("delay", actions.DefaultRefreshDelay, "wait before reading the status back")
	timeout := fs.Duration("timeout", 10*time.Second, "HTTP timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: sendAction [-url URL] <%s|%s|%s>", actions.ActionStart, actions.ActionStop, actions.ActionRestart)
	}
	action := fs.Arg(0)

	client := &http.Client{Timeout: *timeout}
	var failure error
	d := actions.NewDispatcher(*baseURL, client)
	d.RefreshDelay = *delay
	d.Alert = func(msg string) { failure = errors.New(msg) }
	d.Refresh = func() {
		status, err := fetchStatus(client, *baseURL)
		if err != nil {
			failure = err
			return
		}
		fmt.Fprintf(out, "%s: %s (%s)\n", action, status.Status, status.UpdatedAt)
	}

	d.SendAction(context.Background(), action)
	d.Wait()
	return failure
}

func fetchStatus(client *http.Client, baseURL string) (actions.StatusResponse, error) {
	var status actions.StatusResponse
	resp, err := client.Get(strings.TrimRight(baseURL, "/") + "/status")
	if err != nil {
		return status, fmt.Errorf("fetch status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return status, fmt.Errorf("fetch status: unexpected %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return status, fmt.Errorf("decode status: %w", err)
	}
	return status, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
