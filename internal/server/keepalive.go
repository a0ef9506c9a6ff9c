package server

import (
	"log"
	"net/http"
	"time"
)

// StartKeepAlive pings the cron health endpoint on a fixed interval so
// free-tier hosts that idle out inactive instances keep the process warm.
// It returns immediately; the loop runs for the life of the process.
func StartKeepAlive(baseURL string, interval time.Duration) {
	go func() {
		client := &http.Client{Timeout: 5 * time.Second}
		url := baseURL + "/api/cron/health"
		pingHealth(client, url)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			pingHealth(client, url)
		}
	}()
	log.Printf("keep-alive started interval=%s", interval)
}

func pingHealth(client *http.Client, url string) {
	resp, err := client.Get(url)
	if err != nil {
		log.Printf("keep-alive ping failed url=%s error=%v", url, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("keep-alive ping status url=%s status=%d", url, resp.StatusCode)
		return
	}
	log.Printf("keep-alive ping ok url=%s", url)
}
