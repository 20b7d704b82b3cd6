package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/store"
)

func baseURL() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return "http://localhost:" + port
}

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	// 1. Seed the staging pools the server reads from.
	fmt.Println("1. Seeding staging pools...")
	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = "data/staging.db"
	}
	if err := seedPools(sqlitePath); err != nil {
		fmt.Printf("FAILED: Seed staging pools: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("PASSED: Seed staging pools")

	// 2. Run the resolution.
	fmt.Println("2. Running resolution...")
	resolveBody, ok := sendRequest("POST", "/resolve", nil)
	if !ok {
		fmt.Println("FAILED: Resolve")
		os.Exit(1)
	}
	links, _ := resolveBody["links"].(float64)
	if links < 2 {
		fmt.Printf("FAILED: Resolve produced %v links, expected at least 2\n", links)
		os.Exit(1)
	}
	fmt.Printf("PASSED: Resolve (%v links)\n", links)

	// 3. Read back the links.
	fmt.Println("3. Reading links...")
	linksBody, ok := sendRequest("GET", "/links", nil)
	if !ok {
		fmt.Println("FAILED: Read links")
		os.Exit(1)
	}
	if _, present := linksBody["links"]; !present {
		fmt.Println("FAILED: Links response missing 'links'")
		os.Exit(1)
	}
	fmt.Println("PASSED: Read links")

	// 4. Read back the unmatched pools.
	fmt.Println("4. Reading unmatched pools...")
	if _, ok := sendRequest("GET", "/unmatched", nil); !ok {
		fmt.Println("FAILED: Read unmatched")
		os.Exit(1)
	}
	fmt.Println("PASSED: Read unmatched")

	fmt.Println("Integration Test Complete: ALL PASSED")
}

func seedPools(path string) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	tracker := []model.RawIdentitySignal{
		{System: model.SystemLeft, PrimaryID: "1", DisplayName: "Jane Smith", Email: "jane@example.com"},
		{System: model.SystemLeft, PrimaryID: "2", DisplayName: "Pat Lee", Email: "pat@example.com"},
		{System: model.SystemLeft, PrimaryID: "3", DisplayName: "Xi Wu"},
	}
	scm := []model.RawIdentitySignal{
		{System: model.SystemRight, PrimaryID: "10", Login: "jsmith2", Email: "jane@example.com"},
		{System: model.SystemRight, PrimaryID: "20", Email: "pat@example.com"},
		{System: model.SystemRight, PrimaryID: "21", DisplayName: "Pat Lee", Login: "patlee"},
		{System: model.SystemRight, PrimaryID: "30", Login: "kparker"},
	}

	if err := st.SeedTrackerUsers(ctx, tracker); err != nil {
		return err
	}
	return st.SeedSCMUsers(ctx, scm)
}

func sendRequest(method, path string, payload interface{}) (map[string]interface{}, bool) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Error marshalling payload: %v\n", err)
			return nil, false
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL()+path, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Error reading response: %v\n", err)
		return nil, false
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Unexpected status %d: %s\n", resp.StatusCode, string(data))
		return nil, false
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		fmt.Printf("Error decoding response: %v\n", err)
		return nil, false
	}
	return decoded, true
}
