// Command keepalive pings the server's health endpoint on an interval so
// free-tier hosts do not idle the service out.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "base URL of the server to keep alive")
	interval := flag.Duration("interval", 14*time.Minute, "time between health pings")
	flag.Parse()

	client := &http.Client{Timeout: 30 * time.Second}
	target := *baseURL + "/health"

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("pinging %s every %s", target, *interval)
	ping(ctx, client, target)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("keepalive stopped")
			return
		case <-ticker.C:
			ping(ctx, client, target)
		}
	}
}

func ping(ctx context.Context, client *http.Client, target string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		log.Printf("ping: %v", err)
		return
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("ping: %v", err)
		return
	}
	resp.Body.Close()
	log.Printf("ping: %s -> %s", target, resp.Status)
}
