package groups

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stackmentor/stackmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, users ...models.User) (*httptest.Server, fixture) {
	t.Helper()
	fx := newFixture(users...)
	h := NewHandler(fx.mgr, zap.NewNop())
	srv := httptest.NewServer(Routes(h))
	t.Cleanup(srv.Close)
	return srv, fx
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func decodeView(t *testing.T, resp *http.Response) GroupView {
	t.Helper()
	defer resp.Body.Close()
	var view GroupView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return view
}

func TestHandleCreate(t *testing.T) {
	creator := testUser("Alice", "Nguyen")
	srv, _ := newTestServer(t, creator)

	body := fmt.Sprintf(`{"name":"Go Mentors","description":"weekly pairing","created_by":%q}`, creator.ID.Hex())
	resp := postJSON(t, srv.URL+"/", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	view := decodeView(t, resp)
	if view.Name != "Go Mentors" || len(view.Members) != 1 {
		t.Errorf("unexpected view: %+v", view)
	}
	if view.Members[0].Role != models.GroupRoleAdmin {
		t.Errorf("creator role = %q, want %q", view.Members[0].Role, models.GroupRoleAdmin)
	}
}

func TestHandleCreate_BadInput(t *testing.T) {
	creator := testUser("Alice", "Nguyen")
	srv, _ := newTestServer(t, creator)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"blank name", fmt.Sprintf(`{"name":" ","created_by":%q}`, creator.ID.Hex()), http.StatusBadRequest},
		{"bad creator id", `{"name":"Go Mentors","created_by":"nothex"}`, http.StatusBadRequest},
		{"unknown creator", fmt.Sprintf(`{"name":"Go Mentors","created_by":%q}`, primitive.NewObjectID().Hex()), http.StatusNotFound},
		{"malformed body", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/", tt.body)
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestMembershipEndpoints(t *testing.T) {
	creator := testUser("Alice", "Nguyen")
	bob := testUser("Bob", "Ortiz")
	srv, fx := newTestServer(t, creator, bob)

	g, err := fx.mgr.CreateGroup(context.Background(), "Go Mentors", "", creator.ID)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	membersURL := fmt.Sprintf("%s/%s/members", srv.URL, g.ID.Hex())

	resp := postJSON(t, membersURL, fmt.Sprintf(`{"user_id":%q}`, bob.ID.Hex()))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add member status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if view := decodeView(t, resp); len(view.Members) != 2 {
		t.Errorf("roster size = %d, want 2", len(view.Members))
	}

	// Joining twice is a conflict.
	resp = postJSON(t, membersURL, fmt.Sprintf(`{"user_id":%q}`, bob.ID.Hex()))
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate add status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	req, _ := http.NewRequest(http.MethodDelete, membersURL+"/"+bob.ID.Hex(), nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if view := decodeView(t, resp); len(view.Members) != 1 {
		t.Errorf("roster size after removal = %d, want 1", len(view.Members))
	}

	// Leaving twice is a conflict as well.
	req, _ = http.NewRequest(http.MethodDelete, membersURL+"/"+bob.ID.Hex(), nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("repeat remove status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
}

func TestServeView_UnknownGroup(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/" + primitive.NewObjectID().Hex())
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}
