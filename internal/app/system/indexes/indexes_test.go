package indexes_test

import (
	"testing"

	"github.com/stackmentor/stackmentor/internal/app/system/indexes"
	"github.com/stackmentor/stackmentor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}

	// Second call should also succeed (idempotent)
	err = indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func listIndexNames(t *testing.T, db *mongo.Database, collection string) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(collection).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_CreatesExpectedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expected := map[string][]string{
		"users": {
			"uniq_users_email",
			"idx_users_verified_role_industryci",
			"idx_users_verified_experience",
		},
		"groups": {
			"idx_groups_nameci",
			"idx_groups_createdby",
		},
		"group_members": {
			"uniq_groupmembers_group_user",
			"idx_groupmembers_user",
		},
		"conversation_participants": {
			"uniq_convparticipants_conv_user",
			"idx_convparticipants_user",
		},
		"messages": {
			"idx_messages_conv_sentat",
		},
		"message_read_status": {
			"uniq_readstatus_message_user",
			"idx_readstatus_user",
		},
		"email_verifications": {
			"uniq_emailverify_token",
			"idx_emailverify_expires_ttl",
		},
	}

	for collection, names := range expected {
		got := listIndexNames(t, db, collection)
		for _, name := range names {
			if !got[name] {
				t.Errorf("expected index %q to exist on %s collection", name, collection)
			}
		}
	}
}
