package synchronizer_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"musicd/internal/database"
	"musicd/internal/repositories"
	"musicd/internal/services"
	"musicd/internal/synchronizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFLACFixture writes a minimal but spec-valid FLAC file: the "fLaC"
// magic, a zeroed STREAMINFO block, and a vorbis-comment block carrying
// tags. It exercises the exact wire format readFLAC/parseVorbisCommentBlock
// decode, so a round trip through tagger.Read is a meaningful check of the
// synchronizer's reconciliation logic without depending on a real encoder.
func writeFLACFixture(t *testing.T, path string, tags map[string][]string) {
	t.Helper()

	var comment bytes.Buffer
	writeLenPrefixed := func(s string) {
		var l [4]byte
		binary.LittleEndian.PutUint32(l[:], uint32(len(s)))
		comment.Write(l[:])
		comment.WriteString(s)
	}

	writeLenPrefixed("musicd-test")

	var count uint32
	for _, values := range tags {
		count += uint32(len(values))
	}
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], count)
	comment.Write(countBuf[:])
	for key, values := range tags {
		for _, v := range values {
			writeLenPrefixed(key + "=" + v)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("fLaC")

	writeBlockHeader := func(last bool, blockType byte, length int) {
		header := blockType
		if last {
			header |= 0x80
		}
		buf.WriteByte(header)
		buf.WriteByte(byte(length >> 16))
		buf.WriteByte(byte(length >> 8))
		buf.WriteByte(byte(length))
	}

	streamInfo := make([]byte, 34)
	writeBlockHeader(false, 0, len(streamInfo))
	buf.Write(streamInfo)

	writeBlockHeader(true, 4, comment.Len())
	buf.Write(comment.Bytes())

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func newTestSynchronizer(t *testing.T) (*synchronizer.Synchronizer, repositories.Repository) {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repos := repositories.New(db)
	tx := services.NewTransactionService(db)

	return synchronizer.New(repos, tx, db), repos
}

func TestSyncRelease_NewReleaseAssignsID(t *testing.T) {
	ctx := context.Background()
	sync, repos := newTestSynchronizer(t)

	dirPath := filepath.Join(t.TempDir(), "Aphex Twin - Selected Ambient Works 85-92")
	require.NoError(t, os.Mkdir(dirPath, 0o755))
	writeFLACFixture(t, filepath.Join(dirPath, "01 Xtal.flac"), map[string][]string{
		"ALBUM":       {"Selected Ambient Works 85-92"},
		"ALBUMARTIST": {"Aphex Twin"},
		"ARTIST":      {"Aphex Twin"},
		"TITLE":       {"Xtal"},
		"GENRE":       {"IDM"},
		"DATE":        {"1992"},
	})

	finalPath, err := sync.SyncRelease(ctx, dirPath)
	require.NoError(t, err)
	assert.NotEqual(t, dirPath, finalPath)
	assert.Contains(t, filepath.Base(finalPath), "{id=")

	release, err := repos.Release.GetBySourcePath(ctx, finalPath)
	require.NoError(t, err)
	require.NotNil(t, release)
	assert.Equal(t, "Selected Ambient Works 85-92", release.Title)
	assert.NotEmpty(t, release.ID)

	tracks, err := repos.Track.ListByReleaseID(ctx, release.ID)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Xtal", tracks[0].Title)
}

func TestSyncRelease_PreservesExistingID(t *testing.T) {
	ctx := context.Background()
	sync, repos := newTestSynchronizer(t)

	dirPath := filepath.Join(t.TempDir(), "Boards of Canada - Music Has the Right to Children")
	require.NoError(t, os.Mkdir(dirPath, 0o755))
	writeFLACFixture(t, filepath.Join(dirPath, "01 Wildlife Analysis.flac"), map[string][]string{
		"ALBUM":       {"Music Has the Right to Children"},
		"ALBUMARTIST": {"Boards of Canada"},
		"TITLE":       {"Wildlife Analysis"},
		"GENRE":       {"IDM"},
	})

	firstPath, err := sync.SyncRelease(ctx, dirPath)
	require.NoError(t, err)

	firstRelease, err := repos.Release.GetBySourcePath(ctx, firstPath)
	require.NoError(t, err)
	require.NotNil(t, firstRelease)

	secondPath, err := sync.SyncRelease(ctx, firstPath)
	require.NoError(t, err)
	assert.Equal(t, firstPath, secondPath)

	secondRelease, err := repos.Release.GetBySourcePath(ctx, secondPath)
	require.NoError(t, err)
	require.NotNil(t, secondRelease)
	assert.Equal(t, firstRelease.ID, secondRelease.ID)
}

func TestSweepAll_PrunesDeletedRelease(t *testing.T) {
	ctx := context.Background()
	sync, repos := newTestSynchronizer(t)

	root := t.TempDir()

	keepDir := filepath.Join(root, "Keep Release")
	require.NoError(t, os.Mkdir(keepDir, 0o755))
	writeFLACFixture(t, filepath.Join(keepDir, "01 Track.flac"), map[string][]string{
		"ALBUM": {"Keep Release"}, "ALBUMARTIST": {"Artist A"}, "TITLE": {"Track"},
	})

	removeDir := filepath.Join(root, "Remove Release")
	require.NoError(t, os.Mkdir(removeDir, 0o755))
	writeFLACFixture(t, filepath.Join(removeDir, "01 Track.flac"), map[string][]string{
		"ALBUM": {"Remove Release"}, "ALBUMARTIST": {"Artist B"}, "TITLE": {"Track"},
	})

	require.NoError(t, sync.SweepAll(ctx, root))

	sourcePaths, err := repos.Release.ListSourcePaths(ctx)
	require.NoError(t, err)
	assert.Len(t, sourcePaths, 2)

	var removedSourcePath string
	for _, p := range sourcePaths {
		if strings.Contains(p, "Remove Release") {
			removedSourcePath = p
		}
	}
	require.NotEmpty(t, removedSourcePath, "expected a synced source path for the removed release")
	require.NoError(t, os.RemoveAll(removedSourcePath))

	require.NoError(t, sync.SweepAll(ctx, root))

	sourcePaths, err = repos.Release.ListSourcePaths(ctx)
	require.NoError(t, err)
	assert.Len(t, sourcePaths, 1)
	assert.Contains(t, sourcePaths[0], "Keep Release")
}

func TestSyncRelease_DetectsRename(t *testing.T) {
	ctx := context.Background()
	sync, repos := newTestSynchronizer(t)

	root := t.TempDir()
	dirPath := filepath.Join(root, "Original Name")
	require.NoError(t, os.Mkdir(dirPath, 0o755))
	writeFLACFixture(t, filepath.Join(dirPath, "01 Track.flac"), map[string][]string{
		"ALBUM": {"Original Name"}, "ALBUMARTIST": {"Artist"}, "TITLE": {"Track"},
	})

	firstPath, err := sync.SyncRelease(ctx, dirPath)
	require.NoError(t, err)

	firstRelease, err := repos.Release.GetBySourcePath(ctx, firstPath)
	require.NoError(t, err)
	require.NotNil(t, firstRelease)

	renamedPath := filepath.Join(root, "Renamed "+filepath.Base(firstPath))
	require.NoError(t, os.Rename(firstPath, renamedPath))

	finalPath, err := sync.SyncRelease(ctx, renamedPath)
	require.NoError(t, err)
	assert.Equal(t, renamedPath, finalPath)

	movedRelease, err := repos.Release.GetBySourcePath(ctx, renamedPath)
	require.NoError(t, err)
	require.NotNil(t, movedRelease)
	assert.Equal(t, firstRelease.ID, movedRelease.ID)

	stale, err := repos.Release.GetBySourcePath(ctx, firstPath)
	require.NoError(t, err)
	assert.Nil(t, stale)
}
