package upload

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/c2h5oh/datasize"
	plerrors "github.com/paveg/plotdeck/internal/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My cool data.csv", "My_cool_data.csv"},
		{"../../etc/passwd.csv", "etc_passwd.csv"},
		{`C:\Users\x\sales.xlsx`, "C_Users_x_sales.xlsx"},
		{"résumé.xls", "resume.xls"},
		{".hidden.csv", "hidden.csv"},
		{"a@b#c.csv", "abc.csv"},
		{"日本.csv", "csv"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SecureFilename(tt.in))
		})
	}
}

func TestStoreSave(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewStore(fs, "uploads", datasize.KB)
	require.NoError(t, err)

	f, err := store.Save("sales data.csv", strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, "sales_data.csv", f.Name)
	assert.Equal(t, int64(8), f.Size)

	stored, err := store.Open(f)
	require.NoError(t, err)
	defer stored.Close()
	content, err := io.ReadAll(stored)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(content))
}

func TestStoreRejects(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewStore(fs, "uploads", datasize.KB)
	require.NoError(t, err)

	tests := []struct {
		name     string
		filename string
		body     []byte
		kind     plerrors.Kind
	}{
		{"empty name", "", []byte("x"), plerrors.MissingFile},
		{"text file", "notes.txt", []byte("x"), plerrors.InvalidFileType},
		{"no extension", "csv", []byte("x"), plerrors.InvalidFileType},
		{"extension lost in sanitizing", "日本.csv", []byte("x"), plerrors.InvalidFileType},
		{"over cap", "big.csv", bytes.Repeat([]byte("a"), 1025), plerrors.FileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Save(tt.filename, bytes.NewReader(tt.body))
			require.Error(t, err)
			assert.Equal(t, tt.kind, plerrors.KindOf(err))
		})
	}

	exists, err := afero.Exists(fs, "uploads/big.csv")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStoreAllowsExactCap(t *testing.T) {
	store, err := NewStore(afero.NewMemMapFs(), "uploads", datasize.KB)
	require.NoError(t, err)

	f, err := store.Save("edge.CSV", bytes.NewReader(bytes.Repeat([]byte("a"), 1024)))
	require.NoError(t, err)
	assert.Equal(t, int64(1024), f.Size)
	assert.Equal(t, datasize.KB, store.MaxSize())
}
