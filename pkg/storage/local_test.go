package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	store, err := New(&Config{Dir: t.TempDir()})
	require.NoError(t, err)

	info, err := store.Save(context.Background(), 1, "report.txt", KindReport, strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, KindReport, info.Kind)
}

func TestLocalStore_RoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	info, err := store.Save(ctx, 5, "night-audit.txt", KindReport, strings.NewReader("report body"))
	require.NoError(t, err)
	assert.Equal(t, 5, info.PropertyID)
	assert.Equal(t, KindReport, info.Kind)
	assert.Equal(t, int64(len("report body")), info.Size)

	r, got, err := store.Open(ctx, 5, info.ID)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, info.ID, got.ID)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "report body", string(body))
}

func TestLocalStore_ListAndDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first, err := store.Save(ctx, 5, "a.txt", KindReport, strings.NewReader("a"))
	require.NoError(t, err)
	_, err = store.Save(ctx, 5, "b.csv", KindExport, strings.NewReader("b"))
	require.NoError(t, err)
	_, err = store.Save(ctx, 7, "other.txt", KindReport, strings.NewReader("c"))
	require.NoError(t, err)

	artifacts, err := store.List(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, artifacts, 2)

	require.NoError(t, store.Delete(ctx, 5, first.ID))
	artifacts, err = store.List(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, artifacts, 1)

	_, err = store.Info(ctx, 5, first.ID)
	assert.Error(t, err)
}

func TestLocalStore_UnknownArtifact(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Open(context.Background(), 5, uuid.New())
	assert.Error(t, err)
}

func TestLocalStore_SanitizesNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	info, err := store.Save(context.Background(), 1, "../escape/:bad|name", KindReport, strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotContains(t, info.Path, "..")
	assert.NotContains(t, info.Path, "/")
}
