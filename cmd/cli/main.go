package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

func main() {
	serverAddr := flag.String("server", "http://localhost:8080", "GreedyBear API address")
	feedType := flag.String("feed-type", "all", "feed type to pull")
	attackType := flag.String("attack-type", "all", "attack type to filter")
	age := flag.String("age", "recent", "feed age (recent or persistent)")
	token := flag.String("token", os.Getenv("REST_API_AUTH_TOKEN"), "bearer token")
	flag.Parse()

	query := url.Values{}
	query.Set("feed_type", *feedType)
	query.Set("attack_type", *attackType)
	query.Set("age", *age)
	query.Set("format", "txt")
	endpoint := *serverAddr + "/api/v1/feeds?" + query.Encode()

	client := &http.Client{Timeout: 60 * time.Second}
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		log.Fatalf("❌ error building request: %v", err)
	}
	if *token != "" {
		req.Header.Set("Authorization", "Bearer "+*token)
	}

	fmt.Printf("🔍 pulling %s/%s feed from %s...\n\n", *feedType, *age, *serverAddr)

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("❌ error connecting to GreedyBear: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("❌ feed request failed: %s", resp.Status)
	}

	count := 0
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		fmt.Println(line)
		count++
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("❌ error reading feed: %v", err)
	}

	fmt.Println("------------------------------------------------")
	fmt.Printf("✅ %d IOCs in feed.\n", count)
}
