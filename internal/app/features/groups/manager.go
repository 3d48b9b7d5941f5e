// internal/app/features/groups/manager.go
//
// Package groups owns the group membership lifecycle. All membership
// state lives in the group_members collection; the Manager coordinates
// the stores and maps storage outcomes onto the domain error taxonomy.
package groups

import (
	"context"
	"errors"
	"strings"
	"time"

	membershipstore "github.com/stackmentor/stackmentor/internal/app/store/memberships"
	"github.com/stackmentor/stackmentor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	// ErrGroupNotFound is returned when the referenced group does not exist.
	ErrGroupNotFound = errors.New("group not found")
	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyMember is returned when the user already belongs to the group.
	ErrAlreadyMember = errors.New("user is already a member of this group")
	// ErrNotMember is returned when the user does not belong to the group.
	ErrNotMember = errors.New("user is not a member of this group")
	// ErrInvalidGroupName is returned for blank or over-long group names.
	ErrInvalidGroupName = errors.New("group name must be non-empty and at most 50 characters")
	// ErrInvalidRole is returned for membership roles other than admin or member.
	ErrInvalidRole = errors.New(`role must be "admin" or "member"`)
)

// GroupStore is the slice of the group store the Manager needs.
type GroupStore interface {
	Create(ctx context.Context, g models.Group) (models.Group, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// UserStore is the slice of the user store the Manager needs.
type UserStore interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// MembershipStore is the slice of the membership store the Manager needs.
type MembershipStore interface {
	Add(ctx context.Context, groupID, userID primitive.ObjectID, role string) (models.GroupMember, error)
	Remove(ctx context.Context, groupID, userID primitive.ObjectID) error
	Exists(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error)
	ListResolvedByGroup(ctx context.Context, groupID primitive.ObjectID) ([]membershipstore.ResolvedMember, error)
}

// TxnRunner executes fn atomically where the deployment supports it,
// and as a plain call where it does not.
type TxnRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Manager coordinates group and membership operations.
type Manager struct {
	groups      GroupStore
	users       UserStore
	memberships MembershipStore
	runTxn      TxnRunner
	log         *zap.Logger
}

func NewManager(groups GroupStore, users UserStore, memberships MembershipStore, runTxn TxnRunner, log *zap.Logger) *Manager {
	if runTxn == nil {
		runTxn = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{groups: groups, users: users, memberships: memberships, runTxn: runTxn, log: log}
}

// CreateGroup creates a group and enrolls the creator as its admin in
// one atomic step. The creator must exist. Returns the assembled view
// of the new group.
func (m *Manager) CreateGroup(ctx context.Context, name, description string, createdBy primitive.ObjectID) (GroupView, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > models.MaxGroupNameLen {
		return GroupView{}, ErrInvalidGroupName
	}

	ok, err := m.users.Exists(ctx, createdBy)
	if err != nil {
		return GroupView{}, err
	}
	if !ok {
		return GroupView{}, ErrUserNotFound
	}

	var created models.Group
	err = m.runTxn(ctx, func(ctx context.Context) error {
		g, err := m.groups.Create(ctx, models.Group{
			Name:        name,
			Description: description,
			CreatedBy:   createdBy,
		})
		if err != nil {
			return err
		}
		if _, err := m.memberships.Add(ctx, g.ID, createdBy, models.GroupRoleAdmin); err != nil {
			return err
		}
		created = g
		return nil
	})
	if err != nil {
		return GroupView{}, err
	}

	m.log.Info("group created",
		zap.String("group_id", created.ID.Hex()),
		zap.String("created_by", createdBy.Hex()))
	return m.GroupWithMembers(ctx, created.ID)
}

// AddMember enrolls a user in a group. role defaults to member when
// blank. The unique (group_id, user_id) index is the final arbiter
// under concurrency; the membership pre-check only gives a friendlier
// fast path. Returns the refreshed view.
func (m *Manager) AddMember(ctx context.Context, groupID, userID primitive.ObjectID, role string) (GroupView, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = models.GroupRoleMember
	}
	if !models.IsValidGroupRole(role) {
		return GroupView{}, ErrInvalidRole
	}

	ok, err := m.groups.Exists(ctx, groupID)
	if err != nil {
		return GroupView{}, err
	}
	if !ok {
		return GroupView{}, ErrGroupNotFound
	}

	ok, err = m.users.Exists(ctx, userID)
	if err != nil {
		return GroupView{}, err
	}
	if !ok {
		return GroupView{}, ErrUserNotFound
	}

	err = m.runTxn(ctx, func(ctx context.Context) error {
		already, err := m.memberships.Exists(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if already {
			return ErrAlreadyMember
		}
		_, err = m.memberships.Add(ctx, groupID, userID, role)
		return err
	})
	if err != nil {
		if errors.Is(err, membershipstore.ErrDuplicateMembership) {
			return GroupView{}, ErrAlreadyMember
		}
		return GroupView{}, err
	}

	m.log.Info("member added",
		zap.String("group_id", groupID.Hex()),
		zap.String("user_id", userID.Hex()))
	return m.GroupWithMembers(ctx, groupID)
}

// RemoveMember withdraws a user from a group and returns the refreshed
// view.
func (m *Manager) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) (GroupView, error) {
	ok, err := m.groups.Exists(ctx, groupID)
	if err != nil {
		return GroupView{}, err
	}
	if !ok {
		return GroupView{}, ErrGroupNotFound
	}

	err = m.runTxn(ctx, func(ctx context.Context) error {
		return m.memberships.Remove(ctx, groupID, userID)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return GroupView{}, ErrNotMember
		}
		return GroupView{}, err
	}

	m.log.Info("member removed",
		zap.String("group_id", groupID.Hex()),
		zap.String("user_id", userID.Hex()))
	return m.GroupWithMembers(ctx, groupID)
}

// MemberView is one roster entry of a group.
type MemberView struct {
	UserID      primitive.ObjectID `json:"user_id"`
	DisplayName string             `json:"display_name"`
	Role        string             `json:"role"`
	JoinedAt    time.Time          `json:"joined_at"`
}

// GroupView is a group together with its resolved roster.
type GroupView struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	CreatedBy   primitive.ObjectID `json:"created_by"`
	CreatedAt   time.Time          `json:"created_at"`
	Members     []MemberView       `json:"members"`
}

// GroupWithMembers returns the group and its roster. Roster order is
// whatever the store yields; no ordering is promised to callers.
func (m *Manager) GroupWithMembers(ctx context.Context, groupID primitive.ObjectID) (GroupView, error) {
	g, err := m.groups.GetByID(ctx, groupID)
	if err != nil {
		return GroupView{}, mapGroupErr(err)
	}

	resolved, err := m.memberships.ListResolvedByGroup(ctx, groupID)
	if err != nil {
		return GroupView{}, err
	}

	members := make([]MemberView, 0, len(resolved))
	for _, r := range resolved {
		members = append(members, MemberView{
			UserID:      r.User.ID,
			DisplayName: r.User.DisplayName(),
			Role:        r.Role,
			JoinedAt:    r.JoinedAt,
		})
	}

	return GroupView{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
		Members:     members,
	}, nil
}

// IsMember reports whether userID currently belongs to groupID.
func (m *Manager) IsMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	ok, err := m.groups.Exists(ctx, groupID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrGroupNotFound
	}
	return m.memberships.Exists(ctx, groupID, userID)
}

func mapGroupErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrGroupNotFound
	}
	return err
}
