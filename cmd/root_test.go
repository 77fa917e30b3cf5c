package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	inErrors "github.com/Alturino/medstore/internal/errors"
	"github.com/Alturino/medstore/internal/gate"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	return writeConfig(t, t.TempDir(), "  auto_on_start: false\n")
}

// writeConfig writes a config under dir; backupExtra is appended to the
// backup section, empty keeps the defaults.
func writeConfig(t *testing.T, dir string, backupExtra string) string {
	t.Helper()
	content := fmt.Sprintf(`
store:
  data_file: %s
backup:
  dir: %s
%slog:
  level: disabled
`, filepath.Join(dir, "medicines.dat"), filepath.Join(dir, "backups"), backupExtra)
	path := filepath.Join(dir, "medstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCommand(t *testing.T, configFile string, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	a := &app{out: out, in: strings.NewReader(stdin)}
	root := newRootCommand(a)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--config", configFile}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGate(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		stdin       string
		expectedErr error
	}{
		{
			name:        "given default password flag should open store",
			args:        []string{"--password", gate.DefaultPassword, "medicine", "search"},
			expectedErr: nil,
		},
		{
			name:        "given default password on stdin should open store",
			args:        []string{"medicine", "search"},
			stdin:       gate.DefaultPassword + "\n",
			expectedErr: nil,
		},
		{
			name:        "given wrong password should deny access",
			args:        []string{"--password", "letmein", "medicine", "search"},
			expectedErr: inErrors.ErrAccessDenied,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			os.Unsetenv(envPassword)
			_, err := runCommand(t, writeTestConfig(t), test.stdin, test.args...)
			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestMedicineCommands(t *testing.T) {
	configFile := writeTestConfig(t)
	run := func(args ...string) (string, error) {
		return runCommand(t, configFile, "", append([]string{"--password", gate.DefaultPassword}, args...)...)
	}

	out, err := run("medicine", "add", "--id", "1", "--name", "Paracetamol", "--price", "10", "--stock", "20")
	require.NoError(t, err)
	assert.Equal(t, "Medicine added: 1 Paracetamol\n", out)

	_, err = run("medicine", "add", "--id", "1", "--name", "Other", "--price", "1")
	assert.ErrorIs(t, err, inErrors.ErrDuplicateId)

	_, err = run("medicine", "add", "--id", "2", "--name", "Broken", "--price", "abc")
	assert.ErrorIs(t, err, inErrors.ErrInvalidMedicine)

	_, err = run("medicine", "add", "--name", "NoID", "--price", "1")
	assert.ErrorContains(t, err, `required flag(s) "id" not set`)

	out, err = run("medicine", "update", "1", "--stock", "5")
	require.NoError(t, err)
	assert.Equal(t, "Medicine updated: 1 Paracetamol\n", out)

	out, err = run("medicine", "find", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Paracetamol (LOW STOCK)")
	assert.Contains(t, out, "10.00")

	out, err = run("medicine", "low-stock")
	require.NoError(t, err)
	assert.Contains(t, out, "Paracetamol")

	_, err = run("medicine", "delete", "9")
	assert.ErrorIs(t, err, inErrors.ErrMedicineNotFound)

	_, err = run("medicine", "delete", "1")
	require.NoError(t, err)
	out, err = run("medicine", "search")
	require.NoError(t, err)
	assert.NotContains(t, out, "Paracetamol")
}

func TestCheckoutCommand(t *testing.T) {
	configFile := writeTestConfig(t)
	run := func(args ...string) (string, error) {
		return runCommand(t, configFile, "", append([]string{"--password", gate.DefaultPassword}, args...)...)
	}
	_, err := run("medicine", "add", "--id", "1", "--name", "Paracetamol", "--price", "10", "--stock", "20")
	require.NoError(t, err)

	_, err = run("checkout", "--item", "1:21")
	assert.ErrorIs(t, err, inErrors.ErrInsufficientStock)

	_, err = run("checkout", "--item", "1-3")
	assert.ErrorIs(t, err, inErrors.ErrInvalidSelection)

	out, err := run("checkout", "--item", "1:3")
	require.NoError(t, err)
	assert.Contains(t, out, "MEDICAL STORE RECEIPT")
	assert.Contains(t, out, "GRAND TOTAL: Rs 30.00")

	out, err = run("medicine", "find", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "17")

	out, err = run("checkout")
	require.NoError(t, err)
	assert.Equal(t, "Cart is empty!\n", out)
}

func TestBackupAndReportCommands(t *testing.T) {
	configFile := writeTestConfig(t)
	run := func(args ...string) (string, error) {
		return runCommand(t, configFile, "", append([]string{"--password", gate.DefaultPassword}, args...)...)
	}

	_, err := run("backup")
	assert.ErrorIs(t, err, inErrors.ErrBackupSourceMissing)

	csvFile := filepath.Join(t.TempDir(), "import.csv")
	require.NoError(t, os.WriteFile(csvFile, []byte("id,name,price,stock,expiry,company\n5,Brufen,25,100,2026-08-01,Abbott\n"), 0o644))
	out, err := run("import", "--file", csvFile)
	require.NoError(t, err)
	assert.Equal(t, "Imported 1 medicines\n", out)

	out, err = run("backup")
	require.NoError(t, err)
	assert.Contains(t, out, "backup_Manual_")

	out, err = run("backup", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Manual")

	out, err = run("export", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "id,name,price,stock,expiry,company\n5,Brufen,25,100,2026-08-01,Abbott\n", out)

	xlsxFile := filepath.Join(t.TempDir(), "inventory.xlsx")
	_, err = run("export", "--out", xlsxFile)
	require.NoError(t, err)
	assert.FileExists(t, xlsxFile)

	_, err = run("export", "--format", "pdf")
	assert.Error(t, err)
}

func TestAutoBackupOnlyForChangingCommands(t *testing.T) {
	dir := t.TempDir()
	configFile := writeConfig(t, dir, "")
	run := func(args ...string) (string, error) {
		return runCommand(t, configFile, "", append([]string{"--password", gate.DefaultPassword}, args...)...)
	}
	autoBackups := func() []string {
		matches, err := filepath.Glob(filepath.Join(dir, "backups", "backup_Auto_*.dat"))
		require.NoError(t, err)
		return matches
	}

	// no catalog file yet, so this Auto backup has nothing to copy
	_, err := run("medicine", "add", "--id", "1", "--name", "Paracetamol", "--price", "10", "--stock", "20")
	require.NoError(t, err)
	assert.Empty(t, autoBackups())

	_, err = run("medicine", "update", "1", "--stock", "25")
	require.NoError(t, err)
	assert.Len(t, autoBackups(), 1)

	for range 3 {
		_, err = run("medicine", "search")
		require.NoError(t, err)
	}
	_, err = run("medicine", "find", "1")
	require.NoError(t, err)
	_, err = run("medicine", "low-stock")
	require.NoError(t, err)
	out, err := run("backup", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Auto")
	assert.Len(t, autoBackups(), 1)

	_, err = run("checkout", "--item", "1:2")
	require.NoError(t, err)
	assert.Len(t, autoBackups(), 2)
}

func TestHashPasswordCommand(t *testing.T) {
	out, err := runCommand(t, writeTestConfig(t), "", "hash-password", "s3cret")

	require.NoError(t, err)
	hashed := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("s3cret")))
}
