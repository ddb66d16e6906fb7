package card

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnbsp/membership-workflow/internal/entity"
	"github.com/tnbsp/membership-workflow/internal/filestore"
)

func TestVerifyURL(t *testing.T) {
	got := VerifyURL("https://tnbsp.org", 42, "BSP-202609-000042")
	assert.Equal(t, "https://tnbsp.org/verify-membership?id=42&membership_no=BSP-202609-000042", got)
}

func TestGenerateWritesPDF(t *testing.T) {
	base := t.TempDir()
	files, err := filestore.NewLocalStore(filestore.LocalConfig{
		TempDir:   filepath.Join(base, "tmp"),
		DocsDir:   filepath.Join(base, "docs"),
		PhotosDir: filepath.Join(base, "photos"),
		CardsDir:  filepath.Join(base, "cards"),
	}, nil)
	require.NoError(t, err)

	svc := NewService(files, "https://tnbsp.org/", nil)
	m := &entity.Member{
		ID:           42,
		Name:         "R. Kumar",
		MembershipNo: "BSP-202609-000042",
		Mandal:       "Chennai North",
		DOB:          "1985-06-14",
		BloodGroup:   "B+",
		ContactNo:    "9876543210",
		Address:      "12 Main Road, Chennai",
		Status:       "active",
	}

	path, err := svc.Generate(m)
	require.NoError(t, err)
	assert.Equal(t, "BSP-202609-000042.pdf", filepath.Base(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "%PDF"), "output must be a PDF")
}

func TestGenerateWithoutPhoto(t *testing.T) {
	base := t.TempDir()
	files, err := filestore.NewLocalStore(filestore.LocalConfig{
		TempDir:   filepath.Join(base, "tmp"),
		DocsDir:   filepath.Join(base, "docs"),
		PhotosDir: filepath.Join(base, "photos"),
		CardsDir:  filepath.Join(base, "cards"),
	}, nil)
	require.NoError(t, err)

	svc := NewService(files, "https://tnbsp.org", nil)
	m := &entity.Member{ID: 1, Name: "A", MembershipNo: "BSP-202609-000001", ContactNo: "9876543210"}

	path, err := svc.Generate(m)
	require.NoError(t, err)
	assert.FileExists(t, path)
}
