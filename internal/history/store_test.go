// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/rapid-converter/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(id, name string, at time.Time) types.SaveRecord {
	return types.SaveRecord{
		ID:      id,
		Name:    name,
		Path:    "/out/" + name,
		Source:  types.SourceDownload,
		Bytes:   42,
		Pages:   2,
		SavedAt: at,
	}
}

func TestStore_RecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, record("1", "a.pdf", base)))
	require.NoError(t, s.Record(ctx, record("2", "b.pdf", base.Add(time.Minute))))
	enc := record("3", "encrypted_c.docx.pdf", base.Add(2*time.Minute))
	enc.Encrypted = true
	enc.Source = types.SourceConvert
	require.NoError(t, s.Record(ctx, enc))

	recs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "encrypted_c.docx.pdf", recs[0].Name)
	assert.True(t, recs[0].Encrypted)
	assert.Equal(t, types.SourceConvert, recs[0].Source)
	assert.Equal(t, "b.pdf", recs[1].Name)
	assert.Equal(t, "a.pdf", recs[2].Name)
	assert.Equal(t, int64(42), recs[2].Bytes)
	assert.True(t, base.Equal(recs[2].SavedAt))
}

func TestStore_ListLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		require.NoError(t, s.Record(ctx, record(name, name, base.Add(time.Duration(i)*time.Second))))
	}

	recs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c.pdf", recs[0].Name)
}

func TestStore_ReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), record("1", "a.pdf", time.Now())))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	recs, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestExportYAML(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, ExportYAML(&buf, []types.SaveRecord{record("1", "a.pdf", at)}))

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a.pdf", got[0]["name"])
	assert.Equal(t, "download", got[0]["source"])
}
