package directory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeUsers(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeUsers(t, "UserID,Name,Email,Role\n"+
		"u1,Asha,asha@example.com,User\n"+
		"a1,Root,Root@Example.com,admin\n"+
		",skipped,nobody@example.com,User\n")

	d, err := Load(path)
	require.NoError(t, err)
	require.Len(t, d.List(), 2)

	u := d.ByID("u1")
	require.NotNil(t, u)
	assert.Equal(t, "Asha", u.Name)
	assert.False(t, u.IsAdmin())

	// Role parsing and email lookup are case-insensitive.
	a := d.ByEmail("root@example.com")
	require.NotNil(t, a)
	assert.True(t, a.IsAdmin())

	assert.Nil(t, d.ByID("ghost"))
	assert.Nil(t, d.ByEmail("ghost@example.com"))
}

func TestLoadPasswordHashColumn(t *testing.T) {
	path := writeUsers(t, "UserID,Name,Email,Role,PasswordHash\n"+
		"u1,Asha,asha@example.com,User,$2a$10$abcdefg\n"+
		"u2,Ben,ben@example.com,User,\n")

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("$2a$10$abcdefg"), d.ByID("u1").PassHash)
	assert.Nil(t, d.ByID("u2").PassHash)
}

func TestLoadRejectsDuplicates(t *testing.T) {
	_, err := Load(writeUsers(t, "UserID,Name,Email,Role\nu1,A,a@x.com,User\nu1,B,b@x.com,User\n"))
	assert.ErrorContains(t, err, "duplicate user id")

	_, err = Load(writeUsers(t, "UserID,Name,Email,Role\nu1,A,a@x.com,User\nu2,B,A@X.com,User\n"))
	assert.ErrorContains(t, err, "duplicate email")
}

func TestLoadRejectsUnknownRole(t *testing.T) {
	_, err := Load(writeUsers(t, "UserID,Name,Email,Role\nu1,A,a@x.com,Owner\n"))
	assert.ErrorContains(t, err, "unknown role")
}

func TestLoadMissingColumns(t *testing.T) {
	_, err := Load(writeUsers(t, "Name,Email,Role\nA,a@x.com,User\n"))
	assert.ErrorContains(t, err, "UserID")

	_, err = Load(writeUsers(t, "UserID,Name,Role\nu1,A,User\n"))
	assert.ErrorContains(t, err, "Email")
}

func TestLoadMissingFile(t *testing.T) {
	d, err := Load(filepath.Join(t.TempDir(), "absent.csv"))
	require.NoError(t, err)
	assert.Empty(t, d.List())
}
