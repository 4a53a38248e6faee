package store

import (
	"context"
	"os"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"taskmanager/app/config"
)

// createTestNeo4jStore connects to the database named by NEO4J_TEST_URI.
// The database is wiped of Task and Subtask nodes, so never point it at
// real data.
func createTestNeo4jStore(t *testing.T) *Neo4jStore {
	t.Helper()

	uri := os.Getenv("NEO4J_TEST_URI")
	if uri == "" {
		t.Skip("NEO4J_TEST_URI not set")
	}

	ctx := context.Background()
	driver, err := config.InitNeo4j(ctx, config.Neo4jConfig{
		URI:      uri,
		Username: envOr("NEO4J_TEST_USERNAME", "neo4j"),
		Password: envOr("NEO4J_TEST_PASSWORD", "password"),
	})
	if err != nil {
		t.Fatalf("Failed to connect to Neo4j: %v", err)
	}

	store := NewNeo4jStore(driver, "")
	if err := store.Migrate(ctx); err != nil {
		driver.Close(ctx)
		t.Fatalf("Failed to migrate: %v", err)
	}

	wipe := func() {
		_, err := neo4j.ExecuteQuery(ctx, driver,
			"MATCH (n) WHERE n:Task OR n:Subtask DETACH DELETE n", nil,
			neo4j.EagerResultTransformer)
		if err != nil {
			t.Fatalf("Failed to wipe test data: %v", err)
		}
	}
	wipe()
	t.Cleanup(func() {
		wipe()
		store.Close(ctx)
	})
	return store
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestNeo4jTaskLifecycle(t *testing.T) {
	runTaskLifecycle(t, createTestNeo4jStore(t))
}

func TestNeo4jSubtasks(t *testing.T) {
	runSubtasks(t, createTestNeo4jStore(t))
}

func TestNeo4jDeleteTaskKeepsSubtasks(t *testing.T) {
	runDeleteTaskKeepsSubtasks(t, createTestNeo4jStore(t))
}
