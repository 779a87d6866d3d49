package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/growthkit/leadflow/internal/infra/integration/notion"
)

// Manual smoke test against a real Notion workspace. Lists the databases the
// integration can see and writes one test lead into the first of them.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using the host environment")
	}

	if os.Getenv("NOTION_API_KEY") == "" {
		log.Fatal("NOTION_API_KEY must be set")
	}

	client := notion.NewClient(os.Getenv("NOTION_API_KEY"), os.Getenv("NOTION_URL"))
	ctx := context.Background()

	targets, err := client.ListDatabases(ctx)
	if err != nil {
		log.Fatalf("list databases: %v", err)
	}
	if len(targets) == 0 {
		log.Fatal("the integration sees no databases; share one with it in Notion")
	}

	fmt.Println("databases visible to the integration:")
	for _, target := range targets {
		fmt.Printf("  %s  %s\n", target.ID, target.Name)
	}

	dbID := targets[0].ID
	fmt.Printf("\ncreating a test lead in %q...\n", targets[0].Name)

	pageID, err := client.CreatePage(ctx, dbID, map[string]string{
		"Name":       "Test Lead (safe to delete)",
		"Company":    "Example Corp",
		"Role":       "CTO",
		"Email":      "test-lead@example.com",
		"Source URL": "https://example.com/test-lead",
		"Status":     "PROPOSED",
	})
	if err != nil {
		log.Fatalf("create page: %v", err)
	}

	fmt.Printf("created page %s\n", pageID)
}
