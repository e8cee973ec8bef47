package blobdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/bukhari/academy/core/user"
	"github.com/bukhari/academy/storage/document"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

var _ user.Repository = (*userRepository)(nil)

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	return repo.db.View(ctx, func(doc *document.Document) error {
		for _, usr := range doc.Profiles {
			if usr.Email == email && !isExcluded(usr, excludedUsers) {
				return user.ErrEmailExists
			}
		}
		return nil
	})
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	err := repo.db.Update(ctx, func(doc *document.Document) error {
		doc.Profiles = append(doc.Profiles, usr)
		if doc.Passwords == nil {
			doc.Passwords = make(map[string]string)
		}
		doc.Passwords[usr.ID] = string(usr.PasswordHash)
		return nil
	})
	return usr, err
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var users []user.User
	err := repo.db.View(ctx, func(doc *document.Document) error {
		users = repo.query(doc)
		return nil
	})
	return users, err
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var out user.User
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, usr := range doc.Profiles {
			if usr.ID == id {
				out = repo.withPassword(doc, usr)
				return nil
			}
		}
		return user.ErrNotFound
	})
	return out, err
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var out user.User
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, usr := range doc.Profiles {
			if usr.Email == email {
				out = repo.withPassword(doc, usr)
				return nil
			}
		}
		return user.ErrNotFound
	})
	return out, err
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	var users []user.User
	err := repo.db.View(ctx, func(doc *document.Document) error {
		for _, usr := range repo.query(doc) {
			if matchesFilter(usr, filter) {
				users = append(users, usr)
			}
		}
		return nil
	})
	return users, err
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	var out user.User
	err := repo.db.Update(ctx, func(doc *document.Document) error {
		for i, u := range doc.Profiles {
			if u.ID != usr.ID {
				continue
			}
			if usr.Email != "" {
				u.Email = usr.Email
			}
			if usr.FirstName != "" {
				u.FirstName = usr.FirstName
			}
			if usr.LastName != "" {
				u.LastName = usr.LastName
			}
			if usr.Role != "" {
				u.Role = usr.Role
			}
			if usr.GroupID != nil {
				u.GroupID = usr.GroupID
			}
			if isActive != nil {
				u.IsActive = isActive
			}
			if len(usr.PasswordHash) > 0 {
				u.PasswordHash = usr.PasswordHash
				if doc.Passwords == nil {
					doc.Passwords = make(map[string]string)
				}
				doc.Passwords[u.ID] = string(usr.PasswordHash)
			}
			u.UpdatedAt = usr.UpdatedAt
			doc.Profiles[i] = u
			out = u
			return nil
		}
		return user.ErrNotFound
	})
	return out, err
}

func (repo *userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	var out user.User
	err := repo.db.Update(ctx, func(doc *document.Document) error {
		for i, u := range doc.Profiles {
			if u.ID == usr.ID {
				u.LastLogin = usr.LastLogin
				doc.Profiles[i] = u
				out = repo.withPassword(doc, u)
				return nil
			}
		}
		return user.ErrNotFound
	})
	return out, err
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}
	return repo.db.Update(ctx, func(doc *document.Document) error {
		kept := doc.Profiles[:0]
		for _, usr := range doc.Profiles {
			if _, ok := idSet[usr.ID]; ok {
				delete(doc.Passwords, usr.ID)
				continue
			}
			kept = append(kept, usr)
		}
		doc.Profiles = kept
		return nil
	})
}

// query returns the profiles newest first, password hashes attached.
func (repo *userRepository) query(doc *document.Document) []user.User {
	users := make([]user.User, 0, len(doc.Profiles))
	for _, usr := range doc.Profiles {
		users = append(users, repo.withPassword(doc, usr))
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users
}

// withPassword joins the bcrypt hash back onto the profile; the hash
// lives in the document's passwords map, not on the serialized profile.
func (repo *userRepository) withPassword(doc *document.Document, usr user.User) user.User {
	if len(usr.PasswordHash) == 0 {
		usr.PasswordHash = []byte(doc.Passwords[usr.ID])
	}
	return usr
}

func isExcluded(usr user.User, excluded []user.User) bool {
	for _, ex := range excluded {
		if usr.ID == ex.ID {
			return true
		}
	}
	return false
}

func matchesFilter(usr user.User, filter user.QueryFilter) bool {
	if filter.Role != "" && usr.Role != filter.Role {
		return false
	}
	if filter.GroupID != "" && (usr.GroupID == nil || *usr.GroupID != filter.GroupID) {
		return false
	}
	if filter.IsActive != nil && usr.Active() != *filter.IsActive {
		return false
	}
	if !filter.CreatedFrom.IsZero() && usr.CreatedAt.Before(filter.CreatedFrom) {
		return false
	}
	if !filter.CreatedTo.IsZero() && usr.CreatedAt.After(filter.CreatedTo) {
		return false
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(usr.FirstName), search) &&
			!strings.Contains(strings.ToLower(usr.LastName), search) &&
			!strings.Contains(strings.ToLower(usr.Email), search) {
			return false
		}
	}
	return true
}
