package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func collect(t *testing.T, docs <-chan domain.RawDocument, errs <-chan error) ([]domain.RawDocument, []error) {
	t.Helper()
	var gotDocs []domain.RawDocument
	var gotErrs []error
	for docs != nil || errs != nil {
		select {
		case d, ok := <-docs:
			if !ok {
				docs = nil
				continue
			}
			gotDocs = append(gotDocs, d)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			gotErrs = append(gotErrs, err)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout draining channels")
		}
	}
	return gotDocs, gotErrs
}

func TestNew(t *testing.T) {
	source := New("/tmp/dataset")

	assert.Equal(t, "/tmp/dataset", source.Root())
	var _ driven.DocumentSource = source
}

func TestSource_FullSync(t *testing.T) {
	t.Run("emits candidate files in lexical order", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "b.txt"), "second")
		writeFile(t, filepath.Join(root, "a", "fees.json"), `{"content":"x"}`)
		writeFile(t, filepath.Join(root, "notes.md"), "# not a candidate")
		writeFile(t, filepath.Join(root, "SCAN.PDF"), "%PDF")

		docs, errs := collect(t, New(root).FullSync(context.Background()))

		require.Empty(t, errs)
		require.Len(t, docs, 3)
		assert.Equal(t, filepath.Join(root, "SCAN.PDF"), docs[0].Path)
		assert.Equal(t, domain.SourceTypePDF, docs[0].Type)
		assert.Equal(t, filepath.Join(root, "a", "fees.json"), docs[1].Path)
		assert.Equal(t, domain.SourceTypeJSON, docs[1].Type)
		assert.Equal(t, []byte("second"), docs[2].Content)
		assert.Equal(t, int64(6), docs[2].Size)
		assert.False(t, docs[2].ModTime.IsZero())
	})

	t.Run("skips hidden files and directories", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "visible.txt"), "visible")
		writeFile(t, filepath.Join(root, ".hidden.txt"), "hidden")
		writeFile(t, filepath.Join(root, ".git", "notes.txt"), "hidden")

		docs, errs := collect(t, New(root).FullSync(context.Background()))

		require.Empty(t, errs)
		require.Len(t, docs, 1)
		assert.Contains(t, docs[0].Path, "visible.txt")
	})

	t.Run("root inside a hidden directory still walks", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), ".campus-rag", "dataset")
		writeFile(t, filepath.Join(root, "a.txt"), "a")

		docs, errs := collect(t, New(root).FullSync(context.Background()))

		require.Empty(t, errs)
		assert.Len(t, docs, 1)
	})

	t.Run("missing root", func(t *testing.T) {
		docs, errs := collect(t, New("/non/existent/path").FullSync(context.Background()))

		assert.Empty(t, docs)
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], ErrRootNotFound)
	})

	t.Run("cancelled context stops the walk", func(t *testing.T) {
		root := t.TempDir()
		for _, n := range []string{"a.txt", "b.txt", "c.txt"} {
			writeFile(t, filepath.Join(root, n), n)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		docs, _ := collect(t, New(root).FullSync(ctx))

		assert.Empty(t, docs)
	})
}

func TestSource_Watch(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string)
		act   func(t *testing.T, root string)
		want  domain.ChangeType
		file  string
	}{
		{
			name: "create",
			act:  func(t *testing.T, root string) { writeFile(t, filepath.Join(root, "new.txt"), "content") },
			want: domain.ChangeCreated,
			file: "new.txt",
		},
		{
			name:  "modify",
			setup: func(t *testing.T, root string) { writeFile(t, filepath.Join(root, "old.txt"), "initial") },
			act: func(t *testing.T, root string) {
				require.NoError(t, os.WriteFile(filepath.Join(root, "old.txt"), []byte("modified"), 0o644))
			},
			want: domain.ChangeUpdated,
			file: "old.txt",
		},
		{
			name:  "delete",
			setup: func(t *testing.T, root string) { writeFile(t, filepath.Join(root, "gone.txt"), "x") },
			act:   func(t *testing.T, root string) { require.NoError(t, os.Remove(filepath.Join(root, "gone.txt"))) },
			want:  domain.ChangeDeleted,
			file:  "gone.txt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if tt.setup != nil {
				tt.setup(t, root)
			}
			source := New(root)
			defer source.Close()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			changes, err := source.Watch(ctx)
			require.NoError(t, err)
			tt.act(t, root)

			select {
			case change := <-changes:
				assert.Equal(t, tt.want, change.Type)
				assert.Equal(t, filepath.Join(root, tt.file), change.Document.Path)
			case <-time.After(2 * time.Second):
				t.Fatal("timeout waiting for change")
			}
		})
	}
}

func TestSource_WatchNewSubdirectory(t *testing.T) {
	root := t.TempDir()
	source := New(root)
	defer source.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := source.Watch(ctx)
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(root, "sub", "a.txt"), "hello")

	deadline := time.After(2 * time.Second)
	for {
		select {
		case change := <-changes:
			if change.Document.Path == filepath.Join(root, "sub", "a.txt") {
				return
			}
		case <-deadline:
			t.Fatal("no event from new subdirectory")
		}
	}
}

func TestSource_WatchClosesOnCancel(t *testing.T) {
	source := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := source.Watch(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
	assert.NoError(t, source.Close())
}

func TestSource_WatchMissingRoot(t *testing.T) {
	_, err := New("/non/existent/path").Watch(context.Background())
	assert.Error(t, err)
}

func TestSource_Close(t *testing.T) {
	source := New(t.TempDir())
	assert.NoError(t, source.Close(), "close without watch")

	_, err := source.Watch(context.Background())
	require.NoError(t, err)
	assert.NoError(t, source.Close())
	assert.NoError(t, source.Close())
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"/root/.config/file.txt", true},
		{"dir/.git/config", true},
		{".config/.cache/data", true},

		{"file.txt", false},
		{"path/to/file.txt", false},
		{"file.hidden", false},
		{"directory.name/file", false},

		{".", false},
		{"..", false},
		{"path/./file", false},
		{"path/../file", false},
		{"", false},
		{"/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name           string
		file           string
		create         bool
		dir            bool
		operation      fsnotify.Op
		expectedChange bool
		expectedType   domain.ChangeType
	}{
		{name: "create file", file: "a.txt", create: true, operation: fsnotify.Create, expectedChange: true, expectedType: domain.ChangeCreated},
		{name: "write file", file: "a.docx", create: true, operation: fsnotify.Write, expectedChange: true, expectedType: domain.ChangeUpdated},
		{name: "write with chmod", file: "a.txt", create: true, operation: fsnotify.Write | fsnotify.Chmod, expectedChange: true, expectedType: domain.ChangeUpdated},
		{name: "remove file", file: "a.pdf", operation: fsnotify.Remove, expectedChange: true, expectedType: domain.ChangeDeleted},
		{name: "rename file", file: "a.json", operation: fsnotify.Rename, expectedChange: true, expectedType: domain.ChangeDeleted},
		{name: "chmod only", file: "a.txt", create: true, operation: fsnotify.Chmod},
		{name: "directory", file: "sub.txt", dir: true, operation: fsnotify.Create},
		{name: "hidden file", file: ".a.txt", create: true, operation: fsnotify.Create},
		{name: "hidden remove", file: ".a.txt", operation: fsnotify.Remove},
		{name: "unsupported extension", file: "a.md", create: true, operation: fsnotify.Create},
		{name: "vanished before read", file: "a.txt", operation: fsnotify.Create},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			path := filepath.Join(root, tt.file)
			switch {
			case tt.dir:
				require.NoError(t, os.Mkdir(path, 0o755))
			case tt.create:
				writeFile(t, path, "content")
			}

			change := New(root).handleFsEvent(fsnotify.Event{Name: path, Op: tt.operation})

			if !tt.expectedChange {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.Equal(t, tt.expectedType, change.Type)
			assert.Equal(t, path, change.Document.Path)
			if tt.expectedType != domain.ChangeDeleted {
				assert.Equal(t, []byte("content"), change.Document.Content)
			}
		})
	}
}
