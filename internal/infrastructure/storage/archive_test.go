package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-drafts/internal/application/port"
)

func TestLocalArchive_SaveAndRead(t *testing.T) {
	dir := t.TempDir()
	a := NewLocalArchive(dir, zap.NewNop())
	ctx := context.Background()

	path, err := a.Save(ctx, "PO", "PO-2026-0001.xlsx", []byte("v1"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "PO", "PO-2026-0001.xlsx"), path)

	_, err = a.Save(ctx, "PO", "PO-2026-0001.xlsx", []byte("v2"))
	require.NoError(t, err)

	got, err := a.Read(ctx, "PO", "PO-2026-0001.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLocalArchive_ReadMissing(t *testing.T) {
	a := NewLocalArchive(t.TempDir(), zap.NewNop())

	_, err := a.Read(context.Background(), "PO", "nope.xlsx")
	assert.True(t, errors.Is(err, port.ErrNotFound))
}

func TestLocalArchive_RejectsEscapes(t *testing.T) {
	dir := t.TempDir()
	a := NewLocalArchive(dir, zap.NewNop())

	path, err := a.Save(context.Background(), "../../etc", "passwd", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "etc", "passwd"), path, "separators are stripped")

	_, err = a.Save(context.Background(), "..", "x", nil)
	assert.Error(t, err)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"PR-2026-0001.xlsx", "PR-2026-0001.xlsx"},
		{"../secret", "secret"},
		{"a b/c\\d", "abcd"},
		{"ใบสั่งซื้อ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.in), tt.in)
	}
}
