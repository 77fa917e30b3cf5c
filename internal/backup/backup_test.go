package backup

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/medstore/internal/errors"
)

func newFixture(t *testing.T, withSource bool) *Backup {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "medicines.dat")
	if withSource {
		require.NoError(t, os.WriteFile(source, []byte("catalog-bytes"), 0o600))
	}
	b := New(filepath.Join(dir, "backups"), source)
	b.Now = func() time.Time { return time.Date(2026, time.October, 17, 9, 3, 7, 0, time.Local) }
	return b
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name         string
		withSource   bool
		kind         string
		expectedName string
		expectedErr  error
	}{
		{
			name:         "given manual kind should copy to timestamped file",
			withSource:   true,
			kind:         KindManual,
			expectedName: "backup_Manual_20261017_090307.dat",
		},
		{
			name:         "given auto kind should copy to timestamped file",
			withSource:   true,
			kind:         KindAuto,
			expectedName: "backup_Auto_20261017_090307.dat",
		},
		{
			name:        "given missing source should return backup source missing",
			withSource:  false,
			kind:        KindAuto,
			expectedErr: inErrors.ErrBackupSourceMissing,
		},
		{
			name:        "given kind with path separator should return invalid kind",
			withSource:  true,
			kind:        "../escape",
			expectedErr: inErrors.ErrInvalidBackupKind,
		},
		{
			name:        "given empty kind should return invalid kind",
			withSource:  true,
			kind:        "",
			expectedErr: inErrors.ErrInvalidBackupKind,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := newFixture(t, test.withSource)

			path, err := b.Create(test.kind)

			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
				assert.Empty(t, path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(b.Dir, test.expectedName), path)
			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "catalog-bytes", string(content))
		})
	}
}

func TestCreateMissingSourceIsPersistenceError(t *testing.T) {
	b := newFixture(t, false)

	_, err := b.Create(KindManual)

	assert.ErrorIs(t, err, inErrors.ErrPersistenceUnavailable)
}

func TestCreateSameSecondKeepsBothFiles(t *testing.T) {
	b := newFixture(t, true)

	first, err := b.Create(KindManual)
	require.NoError(t, err)
	second, err := b.Create(KindManual)
	require.NoError(t, err)
	third, err := b.Create(KindManual)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(b.Dir, "backup_Manual_20261017_090307.dat"), first)
	assert.Equal(t, filepath.Join(b.Dir, "backup_Manual_20261017_090307_2.dat"), second)
	assert.Equal(t, filepath.Join(b.Dir, "backup_Manual_20261017_090307_3.dat"), third)
}

func TestList(t *testing.T) {
	b := newFixture(t, true)

	entries, err := b.List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = b.Create(KindAuto)
	require.NoError(t, err)
	b.Now = func() time.Time { return time.Date(2026, time.October, 18, 9, 0, 0, 0, time.Local) }
	_, err = b.Create(KindManual)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(b.Dir, "notes.txt"), []byte("x"), 0o600))

	entries, err = b.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, KindManual, entries[0].Kind)
	assert.Equal(t, KindAuto, entries[1].Kind)
	assert.EqualValues(t, len("catalog-bytes"), entries[0].Size)
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		expectedKind string
		expectedOk   bool
	}{
		{name: "given plain name should parse", input: "backup_Auto_20261017_090307.dat", expectedKind: "Auto", expectedOk: true},
		{name: "given suffixed name should parse", input: "backup_Manual_20261017_090307_2.dat", expectedKind: "Manual", expectedOk: true},
		{name: "given bad timestamp should not parse", input: "backup_Manual_2026_0903.dat", expectedOk: false},
		{name: "given other file should not parse", input: "medicines.dat", expectedOk: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			kind, _, ok := ParseName(test.input)
			assert.Equal(t, test.expectedOk, ok)
			assert.Equal(t, test.expectedKind, kind)
		})
	}
}

type recordingRunner struct {
	mu    sync.Mutex
	kinds []string
	done  chan struct{}
}

func (r *recordingRunner) Backup(c context.Context, kind string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
	if len(r.kinds) == 1 {
		close(r.done)
	}
	return "path", nil
}

func TestScheduler(t *testing.T) {
	runner := &recordingRunner{done: make(chan struct{})}

	sched, err := NewScheduler(context.Background(), "@every 1s", runner)
	require.NoError(t, err)
	sched.Start()

	select {
	case <-runner.done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled backup did not run")
	}
	require.NoError(t, sched.Stop(context.Background()))

	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.Equal(t, KindScheduled, runner.kinds[0])
}

func TestSchedulerInvalidSpec(t *testing.T) {
	_, err := NewScheduler(context.Background(), "every now and then", &recordingRunner{})
	assert.Error(t, err)
}
