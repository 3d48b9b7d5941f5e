package groups

import (
	"context"
	"errors"
	"testing"

	membershipstore "github.com/stackmentor/stackmentor/internal/app/store/memberships"
	"github.com/stackmentor/stackmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeGroups struct {
	byID map[primitive.ObjectID]models.Group
}

func newFakeGroups() *fakeGroups {
	return &fakeGroups{byID: map[primitive.ObjectID]models.Group{}}
}

func (f *fakeGroups) Create(_ context.Context, g models.Group) (models.Group, error) {
	g.ID = primitive.NewObjectID()
	f.byID[g.ID] = g
	return g, nil
}

func (f *fakeGroups) GetByID(_ context.Context, id primitive.ObjectID) (models.Group, error) {
	g, ok := f.byID[id]
	if !ok {
		return models.Group{}, mongo.ErrNoDocuments
	}
	return g, nil
}

func (f *fakeGroups) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

type fakeUsers struct {
	byID map[primitive.ObjectID]models.User
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{byID: map[primitive.ObjectID]models.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

type memKey struct {
	group primitive.ObjectID
	user  primitive.ObjectID
}

type fakeMemberships struct {
	users *fakeUsers
	byKey map[memKey]models.GroupMember
	order []memKey
}

func newFakeMemberships(users *fakeUsers) *fakeMemberships {
	return &fakeMemberships{users: users, byKey: map[memKey]models.GroupMember{}}
}

func (f *fakeMemberships) Add(_ context.Context, groupID, userID primitive.ObjectID, role string) (models.GroupMember, error) {
	k := memKey{group: groupID, user: userID}
	if _, dup := f.byKey[k]; dup {
		return models.GroupMember{}, membershipstore.ErrDuplicateMembership
	}
	m := models.GroupMember{ID: primitive.NewObjectID(), GroupID: groupID, UserID: userID, Role: role}
	f.byKey[k] = m
	f.order = append(f.order, k)
	return m, nil
}

func (f *fakeMemberships) Remove(_ context.Context, groupID, userID primitive.ObjectID) error {
	k := memKey{group: groupID, user: userID}
	if _, ok := f.byKey[k]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(f.byKey, k)
	for i, kk := range f.order {
		if kk == k {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeMemberships) Exists(_ context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	_, ok := f.byKey[memKey{group: groupID, user: userID}]
	return ok, nil
}

func (f *fakeMemberships) ListResolvedByGroup(_ context.Context, groupID primitive.ObjectID) ([]membershipstore.ResolvedMember, error) {
	var out []membershipstore.ResolvedMember
	for _, k := range f.order {
		if k.group != groupID {
			continue
		}
		m := f.byKey[k]
		u, ok := f.users.byID[k.user]
		if !ok {
			continue
		}
		out = append(out, membershipstore.ResolvedMember{User: u, Role: m.Role, JoinedAt: m.JoinedAt})
	}
	return out, nil
}

func testUser(first, last string) models.User {
	return models.User{
		ID:        primitive.NewObjectID(),
		FirstName: first,
		LastName:  last,
		Role:      models.RoleMentee,
	}
}

type fixture struct {
	mgr         *Manager
	groups      *fakeGroups
	users       *fakeUsers
	memberships *fakeMemberships
}

func newFixture(users ...models.User) fixture {
	fg := newFakeGroups()
	fu := newFakeUsers(users...)
	fm := newFakeMemberships(fu)
	return fixture{
		mgr:         NewManager(fg, fu, fm, nil, nil),
		groups:      fg,
		users:       fu,
		memberships: fm,
	}
}

func TestCreateGroup_CreatorBecomesAdmin(t *testing.T) {
	creator := testUser("Alice", "Nguyen")
	fx := newFixture(creator)

	g, err := fx.mgr.CreateGroup(context.Background(), "Go Mentors", "weekly pairing", creator.ID)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if g.Name != "Go Mentors" || g.CreatedBy != creator.ID {
		t.Errorf("unexpected group: %+v", g)
	}

	m, ok := fx.memberships.byKey[memKey{group: g.ID, user: creator.ID}]
	if !ok {
		t.Fatal("creator has no membership in the new group")
	}
	if m.Role != models.GroupRoleAdmin {
		t.Errorf("creator role = %q, want %q", m.Role, models.GroupRoleAdmin)
	}
}

func TestCreateGroup_RunsInsideTxn(t *testing.T) {
	creator := testUser("Alice", "Nguyen")
	fg := newFakeGroups()
	fu := newFakeUsers(creator)
	fm := newFakeMemberships(fu)

	var calls int
	runner := func(ctx context.Context, fn func(ctx context.Context) error) error {
		calls++
		return fn(ctx)
	}
	mgr := NewManager(fg, fu, fm, runner, nil)

	if _, err := mgr.CreateGroup(context.Background(), "Go Mentors", "", creator.ID); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("txn runner invoked %d times, want 1", calls)
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	creator := testUser("Alice", "Nguyen")
	fx := newFixture(creator)

	longName := make([]rune, models.MaxGroupNameLen+1)
	for i := range longName {
		longName[i] = 'x'
	}

	tests := []struct {
		name      string
		groupName string
		createdBy primitive.ObjectID
		wantErr   error
	}{
		{"blank name", "   ", creator.ID, ErrInvalidGroupName},
		{"over-long name", string(longName), creator.ID, ErrInvalidGroupName},
		{"unknown creator", "Go Mentors", primitive.NewObjectID(), ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.mgr.CreateGroup(context.Background(), tt.groupName, "", tt.createdBy)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateGroup error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddMember(t *testing.T) {
	creator := testUser("Alice", "Nguyen")
	member := testUser("Bob", "Ortiz")
	fx := newFixture(creator, member)

	g, err := fx.mgr.CreateGroup(context.Background(), "Go Mentors", "", creator.ID)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	view, err := fx.mgr.AddMember(context.Background(), g.ID, member.ID, "")
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if len(view.Members) != 2 {
		t.Fatalf("roster size = %d, want 2", len(view.Members))
	}
	for _, m := range view.Members {
		if m.UserID == member.ID && m.Role != models.GroupRoleMember {
			t.Errorf("new member role = %q, want %q", m.Role, models.GroupRoleMember)
		}
	}

	// A second add for the same pair reports the conflict.
	if _, err := fx.mgr.AddMember(context.Background(), g.ID, member.ID, ""); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("duplicate AddMember error = %v, want ErrAlreadyMember", err)
	}

	if _, err := fx.mgr.AddMember(context.Background(), primitive.NewObjectID(), member.ID, ""); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("unknown group error = %v, want ErrGroupNotFound", err)
	}
	if _, err := fx.mgr.AddMember(context.Background(), g.ID, primitive.NewObjectID(), ""); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user error = %v, want ErrUserNotFound", err)
	}
	if _, err := fx.mgr.AddMember(context.Background(), g.ID, member.ID, "owner"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("bad role error = %v, want ErrInvalidRole", err)
	}
}

func TestAddMember_ExplicitAdminRole(t *testing.T) {
	creator := testUser("Alice", "Nguyen")
	member := testUser("Bob", "Ortiz")
	fx := newFixture(creator, member)

	g, err := fx.mgr.CreateGroup(context.Background(), "Go Mentors", "", creator.ID)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, err := fx.mgr.AddMember(context.Background(), g.ID, member.ID, "Admin"); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	m := fx.memberships.byKey[memKey{group: g.ID, user: member.ID}]
	if m.Role != models.GroupRoleAdmin {
		t.Errorf("role = %q, want %q", m.Role, models.GroupRoleAdmin)
	}
}

func TestAddMember_RaceLosesToUniqueIndex(t *testing.T) {
	// The pre-check can miss a concurrent insert; the duplicate error
	// from the store must still come back as ErrAlreadyMember.
	creator := testUser("Alice", "Nguyen")
	member := testUser("Bob", "Ortiz")
	fx := newFixture(creator, member)

	g, err := fx.mgr.CreateGroup(context.Background(), "Go Mentors", "", creator.ID)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// Simulate the racing writer landing between pre-check and insert.
	raced := &racingMemberships{fakeMemberships: fx.memberships, groupID: g.ID, userID: member.ID}
	mgr := NewManager(fx.groups, fx.users, raced, nil, nil)

	if _, err := mgr.AddMember(context.Background(), g.ID, member.ID, ""); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("raced AddMember error = %v, want ErrAlreadyMember", err)
	}
}

// racingMemberships reports the pair absent at pre-check time, then
// inserts it just before the manager's own insert.
type racingMemberships struct {
	*fakeMemberships
	groupID primitive.ObjectID
	userID  primitive.ObjectID
}

func (r *racingMemberships) Exists(_ context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	if groupID == r.groupID && userID == r.userID {
		return false, nil
	}
	return r.fakeMemberships.Exists(context.Background(), groupID, userID)
}

func (r *racingMemberships) Add(ctx context.Context, groupID, userID primitive.ObjectID, role string) (models.GroupMember, error) {
	if groupID == r.groupID && userID == r.userID {
		if _, err := r.fakeMemberships.Add(ctx, groupID, userID, role); err == nil {
			// First insert is the racing writer's; ours now collides.
			return r.fakeMemberships.Add(ctx, groupID, userID, role)
		}
	}
	return r.fakeMemberships.Add(ctx, groupID, userID, role)
}

func TestRemoveMember(t *testing.T) {
	creator := testUser("Alice", "Nguyen")
	member := testUser("Bob", "Ortiz")
	fx := newFixture(creator, member)

	g, err := fx.mgr.CreateGroup(context.Background(), "Go Mentors", "", creator.ID)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, err := fx.mgr.AddMember(context.Background(), g.ID, member.ID, ""); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	view, err := fx.mgr.RemoveMember(context.Background(), g.ID, member.ID)
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if len(view.Members) != 1 {
		t.Errorf("roster size after removal = %d, want 1", len(view.Members))
	}

	// Removing again reports the absence.
	if _, err := fx.mgr.RemoveMember(context.Background(), g.ID, member.ID); !errors.Is(err, ErrNotMember) {
		t.Errorf("second RemoveMember error = %v, want ErrNotMember", err)
	}
	if _, err := fx.mgr.RemoveMember(context.Background(), primitive.NewObjectID(), member.ID); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("unknown group error = %v, want ErrGroupNotFound", err)
	}

	// Leaving and rejoining works.
	if _, err := fx.mgr.AddMember(context.Background(), g.ID, member.ID, ""); err != nil {
		t.Fatalf("re-AddMember failed: %v", err)
	}
}

func TestRemoveMember_CreatorHasNoProtection(t *testing.T) {
	// The creator's admin membership is a membership like any other;
	// removing it succeeds and can leave the group without an admin.
	creator := testUser("Alice", "Nguyen")
	bob := testUser("Bob", "Ortiz")
	fx := newFixture(creator, bob)

	g, err := fx.mgr.CreateGroup(context.Background(), "Backend Crew", "", creator.ID)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, err := fx.mgr.AddMember(context.Background(), g.ID, bob.ID, ""); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	view, err := fx.mgr.RemoveMember(context.Background(), g.ID, creator.ID)
	if err != nil {
		t.Fatalf("RemoveMember(creator) failed: %v", err)
	}
	if len(view.Members) != 1 {
		t.Fatalf("roster size = %d, want 1", len(view.Members))
	}
	if view.Members[0].UserID != bob.ID || view.Members[0].Role != models.GroupRoleMember {
		t.Errorf("remaining member = %+v, want bob as member", view.Members[0])
	}

	ok, err := fx.mgr.IsMember(context.Background(), g.ID, creator.ID)
	if err != nil {
		t.Fatalf("IsMember failed: %v", err)
	}
	if ok {
		t.Error("creator still reported as member after removal")
	}
}

func TestGroupWithMembers(t *testing.T) {
	creator := testUser("Alice", "Nguyen")
	bob := testUser("Bob", "Ortiz")
	carol := testUser("Carol", "Diaz")
	fx := newFixture(creator, bob, carol)

	g, err := fx.mgr.CreateGroup(context.Background(), "Go Mentors", "weekly pairing", creator.ID)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	for _, u := range []models.User{bob, carol} {
		if _, err := fx.mgr.AddMember(context.Background(), g.ID, u.ID, ""); err != nil {
			t.Fatalf("AddMember(%s) failed: %v", u.FirstName, err)
		}
	}

	view, err := fx.mgr.GroupWithMembers(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("GroupWithMembers failed: %v", err)
	}
	if view.Name != "Go Mentors" || view.Description != "weekly pairing" || view.CreatedBy != creator.ID {
		t.Errorf("unexpected view header: %+v", view)
	}
	if len(view.Members) != 3 {
		t.Fatalf("roster size = %d, want 3", len(view.Members))
	}

	byUser := map[primitive.ObjectID]MemberView{}
	for _, m := range view.Members {
		byUser[m.UserID] = m
	}
	if got := byUser[creator.ID]; got.Role != models.GroupRoleAdmin || got.DisplayName != "Alice Nguyen" {
		t.Errorf("creator entry = %+v", got)
	}
	if got := byUser[bob.ID]; got.Role != models.GroupRoleMember || got.DisplayName != "Bob Ortiz" {
		t.Errorf("bob entry = %+v", got)
	}

	if _, err := fx.mgr.GroupWithMembers(context.Background(), primitive.NewObjectID()); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("unknown group error = %v, want ErrGroupNotFound", err)
	}
}

func TestMembershipLifecycle(t *testing.T) {
	// Full pass: create, grow, shrink, view.
	creator := testUser("Alice", "Nguyen")
	bob := testUser("Bob", "Ortiz")
	carol := testUser("Carol", "Diaz")
	fx := newFixture(creator, bob, carol)

	g, err := fx.mgr.CreateGroup(context.Background(), "Backend Circle", "", creator.ID)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	for _, u := range []models.User{bob, carol} {
		if _, err := fx.mgr.AddMember(context.Background(), g.ID, u.ID, ""); err != nil {
			t.Fatalf("AddMember(%s) failed: %v", u.FirstName, err)
		}
	}
	if _, err := fx.mgr.RemoveMember(context.Background(), g.ID, bob.ID); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}

	ok, err := fx.mgr.IsMember(context.Background(), g.ID, bob.ID)
	if err != nil {
		t.Fatalf("IsMember failed: %v", err)
	}
	if ok {
		t.Error("bob still reported as member after removal")
	}

	view, err := fx.mgr.GroupWithMembers(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("GroupWithMembers failed: %v", err)
	}
	if len(view.Members) != 2 {
		t.Fatalf("roster size = %d, want 2", len(view.Members))
	}
	for _, m := range view.Members {
		if m.UserID == bob.ID {
			t.Error("removed member still present in roster")
		}
	}
}
