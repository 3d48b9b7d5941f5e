package messagestore_test

import (
	"testing"

	messagestore "github.com/stackmentor/stackmentor/internal/app/store/messages"
	"github.com/stackmentor/stackmentor/internal/domain/models"
	"github.com/stackmentor/stackmentor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestConversationLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := messagestore.New(db)
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	outsider := primitive.NewObjectID()

	conv, err := store.CreateConversation(ctx, models.ConversationPrivate, nil, []primitive.ObjectID{alice, bob})
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}

	for _, tc := range []struct {
		user primitive.ObjectID
		want bool
	}{{alice, true}, {bob, true}, {outsider, false}} {
		ok, err := store.IsParticipant(ctx, conv.ID, tc.user)
		if err != nil {
			t.Fatalf("IsParticipant failed: %v", err)
		}
		if ok != tc.want {
			t.Errorf("IsParticipant(%s) = %v, want %v", tc.user.Hex(), ok, tc.want)
		}
	}

	first, err := store.Insert(ctx, conv.ID, alice, "hello", nil)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := store.Insert(ctx, conv.ID, bob, "hi back", nil); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := store.Insert(ctx, conv.ID, outsider, "let me in", nil); err != messagestore.ErrNotParticipant {
		t.Errorf("outsider Insert error = %v, want ErrNotParticipant", err)
	}

	msgs, err := store.ListByConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListByConversation failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("listed %d messages, want 2", len(msgs))
	}
	if msgs[0].Content != "hello" {
		t.Errorf("messages not in send order: first is %q", msgs[0].Content)
	}

	// Read flags.
	if err := store.MarkRead(ctx, first.ID, bob); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	// Marking twice is a no-op.
	if err := store.MarkRead(ctx, first.ID, bob); err != nil {
		t.Fatalf("repeat MarkRead failed: %v", err)
	}

	ids := []primitive.ObjectID{msgs[0].ID, msgs[1].ID}
	read, err := store.ReadMessageIDs(ctx, bob, ids)
	if err != nil {
		t.Fatalf("ReadMessageIDs failed: %v", err)
	}
	if !read[first.ID] || read[msgs[1].ID] {
		t.Errorf("read flags = %v", read)
	}
}

func TestSoftDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := messagestore.New(db)
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	conv, err := store.CreateConversation(ctx, models.ConversationPrivate, nil, []primitive.ObjectID{alice, bob})
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	m, err := store.Insert(ctx, conv.ID, alice, "oops", nil)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Only the sender can delete.
	if err := store.SoftDelete(ctx, m.ID, bob); err == nil {
		t.Error("non-sender delete succeeded")
	}
	if err := store.SoftDelete(ctx, m.ID, alice); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	msgs, err := store.ListByConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListByConversation failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("deleted message still listed: %v", msgs)
	}
}
