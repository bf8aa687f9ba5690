// Package directory loads the read-only user directory from a CSV file.
// Email is the login key and must be unique; users are never created or
// modified by the application.
package directory

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

func parseRole(s string) (Role, bool) {
	switch {
	case strings.EqualFold(s, string(RoleAdmin)):
		return RoleAdmin, true
	case strings.EqualFold(s, string(RoleUser)):
		return RoleUser, true
	}
	return "", false
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	// PassHash is an optional bcrypt hash. Users without one log in by
	// email alone (the original tool's simulated login).
	PassHash []byte `json:"-"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

type Directory struct {
	users   []*User
	byID    map[string]*User
	byEmail map[string]*User
}

// Load reads users from the CSV at path. Expected header:
// UserID,Name,Email,Role with an optional PasswordHash column. A missing
// file yields an empty directory; duplicate emails or ids and unknown roles
// are errors.
func Load(path string) (*Directory, error) {
	d := &Directory{users: []*User{}, byID: map[string]*User{}, byEmail: map[string]*User{}}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user directory %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("load user directory %s: %w", path, err)
	}
	if len(rows) == 0 {
		return d, nil
	}

	idx := map[string]int{}
	for i, h := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	col := func(names ...string) (int, bool) {
		for _, n := range names {
			if i, ok := idx[n]; ok {
				return i, true
			}
		}
		return 0, false
	}
	idCol, ok := col("userid", "id")
	if !ok {
		return nil, fmt.Errorf("load user directory %s: missing UserID column", path)
	}
	nameCol, _ := col("name")
	emailCol, ok := col("email")
	if !ok {
		return nil, fmt.Errorf("load user directory %s: missing Email column", path)
	}
	roleCol, ok := col("role")
	if !ok {
		return nil, fmt.Errorf("load user directory %s: missing Role column", path)
	}
	hashCol, hasHash := col("passwordhash", "password_hash")

	cell := func(row []string, c int) string {
		if c < len(row) {
			return strings.TrimSpace(row[c])
		}
		return ""
	}

	for n, row := range rows[1:] {
		id := cell(row, idCol)
		email := cell(row, emailCol)
		if id == "" || email == "" {
			continue
		}
		role, ok := parseRole(cell(row, roleCol))
		if !ok {
			return nil, fmt.Errorf("load user directory %s: row %d: unknown role %q", path, n+2, cell(row, roleCol))
		}
		u := &User{ID: id, Name: cell(row, nameCol), Email: email, Role: role}
		if hasHash {
			if h := cell(row, hashCol); h != "" {
				u.PassHash = []byte(h)
			}
		}
		if _, dup := d.byID[u.ID]; dup {
			return nil, fmt.Errorf("load user directory %s: duplicate user id %q", path, u.ID)
		}
		key := strings.ToLower(u.Email)
		if _, dup := d.byEmail[key]; dup {
			return nil, fmt.Errorf("load user directory %s: duplicate email %q", path, u.Email)
		}
		d.users = append(d.users, u)
		d.byID[u.ID] = u
		d.byEmail[key] = u
	}
	return d, nil
}

// ByID returns the user with the given id, or nil.
func (d *Directory) ByID(id string) *User { return d.byID[id] }

// ByEmail looks a user up by email, case-insensitively.
func (d *Directory) ByEmail(email string) *User {
	return d.byEmail[strings.ToLower(strings.TrimSpace(email))]
}

// List returns all users in file order.
func (d *Directory) List() []*User { return append([]*User(nil), d.users...) }
