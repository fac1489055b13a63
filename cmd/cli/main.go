package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "settlecore-cli",
		Short: "SettleCore CLI tool",
		Long:  `A command line interface for interacting with the SettleCore API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the SettleCore API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check the global double-entry invariants",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	}

	ledgerCmd.AddCommand(consistencyCmd)

	// Audit commands
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit chain operations",
	}

	verifyCmd := &cobra.Command{
		Use:   "verify [entity-type] [entity-id]",
		Short: "Verify audit chains (all chains when no entity is given)",
		Args:  cobra.RangeArgs(0, 2),
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 2 {
				verifyChain(args[0], args[1])
				return
			}
			verifyAllChains()
		},
	}

	auditCmd.AddCommand(verifyCmd)

	// Sanctions commands
	sanctionsCmd := &cobra.Command{
		Use:   "sanctions",
		Short: "Sanctions watchlist operations",
	}

	ingestCmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Ingest a watchlist JSON file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ingestWatchlist(args[0])
		},
	}

	sanctionsCmd.AddCommand(ingestCmd)

	rootCmd.AddCommand(ledgerCmd, auditCmd, sanctionsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func checkConsistency() {
	body, status := get("/api/v1/audit/ledger/consistency")
	if status != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	fmt.Println("Consistency check PASSED")
}

func verifyChain(entityType, entityID string) {
	body, status := get(fmt.Sprintf("/api/v1/audit/%s/%s/verify", entityType, entityID))
	if status != http.StatusOK {
		fmt.Printf("Verification request failed (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result struct {
		Valid       bool   `json:"valid"`
		BreachAt    string `json:"breach_at"`
		BreachIndex int    `json:"breach_index"`
		Records     int    `json:"records"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if !result.Valid {
		fmt.Printf("Chain INVALID: breach at record %s (index %d)\n", result.BreachAt, result.BreachIndex)
		os.Exit(1)
	}

	fmt.Printf("Chain valid (%d records)\n", result.Records)
}

func verifyAllChains() {
	body, status := post("/api/v1/audit/verify", nil)
	if status != http.StatusOK {
		fmt.Printf("Verification request failed (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result struct {
		Breaches int `json:"breaches"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if result.Breaches > 0 {
		fmt.Printf("Found %d chain breach(es)\nResponse: %s\n", result.Breaches, string(body))
		os.Exit(1)
	}

	fmt.Println("All chains valid")
}

func ingestWatchlist(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Failed to read file: %v\n", err)
		os.Exit(1)
	}

	body, status := post("/api/v1/sanctions/ingest", data)
	if status != http.StatusOK {
		fmt.Printf("Ingestion failed (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result struct {
		Ingested  int `json:"ingested"`
		IndexSize int `json:"index_size"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Ingested %d entries, index size %d\n", result.Ingested, result.IndexSize)
}

func get(path string) ([]byte, int) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	return body, resp.StatusCode
}

func post(path string, payload []byte) ([]byte, int) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	return body, resp.StatusCode
}
