// Package main provides a container health probe that hits the server's
// liveness endpoint. It exits non-zero when the server is unreachable.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/garyellow/vkbot-go/internal/config"
)

func main() {
	port := os.Getenv(config.EnvPort)
	if port == "" {
		port = "10000"
	}

	client := &http.Client{Timeout: 8 * time.Second}
	url := fmt.Sprintf("http://localhost:%s/livez", port)

	resp, err := client.Get(url)
	if err != nil {
		os.Exit(1)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
