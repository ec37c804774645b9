package fs_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/wikidoc"
	"github.com/fwojciec/wikidoc/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_ImplementsInterface(t *testing.T) {
	t.Parallel()

	var _ wikidoc.RecordWriter = &fs.Writer{}
}

func TestWriter_CreateRecord(t *testing.T) {
	t.Parallel()

	t.Run("writes one JSON line per record", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := fs.NewWriter(&buf)
		ctx := context.Background()

		require.NoError(t, w.CreateRecord(ctx, &wikidoc.Record{
			Position: 0,
			Content:  "<b>aespa</b>는 걸그룹이다",
			Metadata: wikidoc.RecordMetadata{
				PageTopic:  "aespa",
				CurrentURL: "https://namu.wiki/w/aespa",
				Index:      "1",
				TOCItem:    "개요",
			},
		}))
		require.NoError(t, w.CreateRecord(ctx, &wikidoc.Record{
			Position: 1,
			Metadata: wikidoc.RecordMetadata{CurrentURL: "https://namu.wiki/w/aespa", Index: "2"},
		}))

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], `"content":"<b>aespa</b>는 걸그룹이다"`)
		assert.Contains(t, lines[0], `"tocItem":"개요"`)

		var rec wikidoc.Record
		require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
		assert.Equal(t, 1, rec.Position)
		assert.Equal(t, "", rec.Content)
		assert.Equal(t, "2", rec.Metadata.Index)
	})

	t.Run("validates record", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := fs.NewWriter(&buf).CreateRecord(context.Background(), &wikidoc.Record{Content: "x"})

		require.Error(t, err)
		assert.Equal(t, wikidoc.EINVALID, wikidoc.ErrorCode(err))
		assert.Empty(t, buf.String())
	})

	t.Run("returns context error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var buf bytes.Buffer
		err := fs.NewWriter(&buf).CreateRecord(ctx, &wikidoc.Record{
			Metadata: wikidoc.RecordMetadata{CurrentURL: "https://namu.wiki/w/aespa"},
		})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCreate(t *testing.T) {
	t.Parallel()

	t.Run("creates parent directories and file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out", "nested", "aespa.jsonl")

		w, err := fs.Create(path)
		require.NoError(t, err)
		require.NoError(t, w.CreateRecord(context.Background(), &wikidoc.Record{
			Content:  "본문",
			Metadata: wikidoc.RecordMetadata{CurrentURL: "https://namu.wiki/w/aespa"},
		}))
		require.NoError(t, w.Close())

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()

		var n int
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			n++
		}
		require.NoError(t, sc.Err())
		assert.Equal(t, 1, n)
	})
}
