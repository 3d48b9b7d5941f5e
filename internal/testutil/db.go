// internal/testutil/db.go
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnvMongoURI names the environment variable that points store tests at
// a MongoDB instance. Tests that need a database skip when it is unset.
const EnvMongoURI = "STACKMENTOR_TEST_MONGO_URI"

// TestContext returns a context with a timeout suitable for one test's
// worth of database calls.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// SetupTestDB connects to the Mongo instance named by EnvMongoURI and
// hands back a throwaway database that is dropped when the test ends.
// Skips the test when the variable is unset.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv(EnvMongoURI)
	if uri == "" {
		t.Skipf("set %s to run database tests", EnvMongoURI)
	}

	ctx, cancel := TestContext()
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect to test mongo: %v", err)
	}

	db := client.Database(fmt.Sprintf("stackmentor_test_%d", time.Now().UnixNano()))

	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}
