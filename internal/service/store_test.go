package service

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/medstore/internal/backup"
	"github.com/Alturino/medstore/internal/cart"
	inErrors "github.com/Alturino/medstore/internal/errors"
	"github.com/Alturino/medstore/internal/metrics"
	"github.com/Alturino/medstore/internal/repository"
)

var (
	fixedTime = time.Date(2026, time.October, 17, 14, 5, 9, 0, time.UTC)
	fixedID   = uuid.MustParse("5f0c6f0e-7a43-4c4e-9a56-2f6f1c3a9b10")
)

func seedMedicines() []repository.Medicine {
	return []repository.Medicine{
		{ID: 1, Name: "Paracetamol", Price: decimal.NewFromInt(10), Stock: 20, Expiry: "2026-12-01", Company: "GSK"},
		{ID: 12, Name: "Amoxicillin", Price: decimal.NewFromInt(45), Stock: 4, Expiry: "2026-10-20", Company: "Pfizer"},
		{ID: 30, Name: "Brufen", Price: decimal.NewFromInt(25), Stock: 100, Expiry: "2026-08-01", Company: "Abbott"},
	}
}

func testOptions(dir string) Options {
	return Options{
		DataFile:   filepath.Join(dir, "store", "medicines.dat"),
		BackupDir:  filepath.Join(dir, "backups"),
		StoreName:  "MEDICAL STORE",
		Currency:   "Rs",
		AutoBackup: false,
		Now:        func() time.Time { return fixedTime },
		NewID:      func() uuid.UUID { return fixedID },
	}
}

func newTestService(t *testing.T, seed []repository.Medicine) (*StoreService, Options) {
	t.Helper()
	opts := testOptions(t.TempDir())
	if seed != nil {
		require.NoError(t, repository.NewCatalogFile(opts.DataFile).Save(seed))
	}
	return NewStoreService(context.Background(), opts), opts
}

// breakDataFile replaces the directory holding the catalog file with a
// regular file so that saving fails even when running as root.
func breakDataFile(t *testing.T, opts Options) {
	t.Helper()
	dir := filepath.Dir(opts.DataFile)
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("not a directory"), 0o644))
}

func TestNewStoreServiceLoad(t *testing.T) {
	tests := []struct {
		name          string
		prepare       func(t *testing.T, opts Options)
		expectedErr   error
		expectedCount int
	}{
		{
			name: "given saved catalog should load every medicine",
			prepare: func(t *testing.T, opts Options) {
				require.NoError(t, repository.NewCatalogFile(opts.DataFile).Save(seedMedicines()))
			},
			expectedErr:   nil,
			expectedCount: 3,
		},
		{
			name:          "given missing file should start empty with catalog not found",
			prepare:       func(t *testing.T, opts Options) {},
			expectedErr:   inErrors.ErrCatalogNotFound,
			expectedCount: 0,
		},
		{
			name: "given corrupt file should start empty with persistence unavailable",
			prepare: func(t *testing.T, opts Options) {
				require.NoError(t, os.MkdirAll(filepath.Dir(opts.DataFile), 0o755))
				require.NoError(t, os.WriteFile(opts.DataFile, []byte{0, 0, 0, 9, 1}, 0o644))
			},
			expectedErr:   inErrors.ErrPersistenceUnavailable,
			expectedCount: 0,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			opts := testOptions(t.TempDir())
			test.prepare(t, opts)

			svc := NewStoreService(context.Background(), opts)

			if test.expectedErr == nil {
				assert.NoError(t, svc.LoadError())
			} else {
				assert.ErrorIs(t, svc.LoadError(), test.expectedErr)
			}
			medicines := svc.Medicines(context.Background())
			assert.NotNil(t, medicines)
			assert.Len(t, medicines, test.expectedCount)
		})
	}
}

func TestNewStoreServiceAutoBackup(t *testing.T) {
	t.Run("given existing catalog should create auto backup", func(t *testing.T) {
		opts := testOptions(t.TempDir())
		opts.AutoBackup = true
		require.NoError(t, repository.NewCatalogFile(opts.DataFile).Save(seedMedicines()))

		svc := NewStoreService(context.Background(), opts)

		startup := svc.Startup()
		require.NoError(t, startup.AutoBackupErr)
		assert.Equal(t, "backup_Auto_20261017_140509.dat", filepath.Base(startup.AutoBackupPath))
		assert.FileExists(t, startup.AutoBackupPath)
	})

	t.Run("given missing catalog should report backup source missing", func(t *testing.T) {
		opts := testOptions(t.TempDir())
		opts.AutoBackup = true

		svc := NewStoreService(context.Background(), opts)

		startup := svc.Startup()
		assert.ErrorIs(t, startup.AutoBackupErr, inErrors.ErrBackupSourceMissing)
		assert.ErrorIs(t, startup.AutoBackupErr, inErrors.ErrPersistenceUnavailable)
		assert.Empty(t, startup.AutoBackupPath)
	})
}

func TestCheckoutPersistsAndClearsCart(t *testing.T) {
	c := context.Background()
	svc, opts := newTestService(t, seedMedicines())

	_, err := svc.AddToCart(c, 1, 3)
	require.NoError(t, err)

	receipt, ok, err := svc.Checkout(c)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fixedID, receipt.ID)
	assert.Equal(t, "30.00", receipt.Total.StringFixed(2))
	assert.Empty(t, svc.Cart(c).Items)

	reopened := NewStoreService(c, opts)
	require.NoError(t, reopened.LoadError())
	m, err := reopened.FindMedicine(c, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 17, m.Stock)
}

func TestUnitsSold(t *testing.T) {
	items := []cart.Item{
		{MedicineID: 1, Quantity: math.MaxInt32},
		{MedicineID: 2, Quantity: math.MaxInt32},
		{MedicineID: 3, Quantity: 2},
	}

	assert.Equal(t, int64(2*math.MaxInt32+2), unitsSold(items))
	assert.Zero(t, unitsSold(nil))
}

func TestCheckoutEmptyCart(t *testing.T) {
	c := context.Background()
	svc, _ := newTestService(t, seedMedicines())

	receipt, ok, err := svc.Checkout(c)

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, receipt.Lines)
}

func TestCheckoutRollsBackWhenSaveFails(t *testing.T) {
	c := context.Background()
	svc, opts := newTestService(t, seedMedicines())
	_, err := svc.AddToCart(c, 1, 3)
	require.NoError(t, err)
	breakDataFile(t, opts)

	_, ok, err := svc.Checkout(c)

	assert.False(t, ok)
	assert.ErrorIs(t, err, inErrors.ErrPersistenceUnavailable)
	m, err := svc.FindMedicine(c, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 20, m.Stock, "stock is rolled back")
	assert.Len(t, svc.Cart(c).Items, 1, "cart is kept for retry")
}

func TestCheckoutWritesReceiptFile(t *testing.T) {
	c := context.Background()
	opts := testOptions(t.TempDir())
	opts.ReceiptDir = filepath.Join(filepath.Dir(opts.BackupDir), "receipts")
	require.NoError(t, repository.NewCatalogFile(opts.DataFile).Save(seedMedicines()))
	svc := NewStoreService(c, opts)
	_, err := svc.AddToCart(c, 30, 2)
	require.NoError(t, err)

	receipt, ok, err := svc.Checkout(c)
	require.NoError(t, err)
	require.True(t, ok)

	content, err := os.ReadFile(filepath.Join(opts.ReceiptDir, "receipt_"+fixedID.String()+".txt"))
	require.NoError(t, err)
	assert.Equal(t, receipt.Text(), string(content))
	assert.True(t, strings.Contains(string(content), "GRAND TOTAL: Rs 50.00"))
}

func TestAddToCart(t *testing.T) {
	tests := []struct {
		name        string
		medicineID  int32
		qty         int32
		expectedErr error
	}{
		{name: "given enough stock should add line", medicineID: 12, qty: 4, expectedErr: nil},
		{name: "given more than stock should fail", medicineID: 12, qty: 5, expectedErr: inErrors.ErrInsufficientStock},
		{name: "given unknown id should fail", medicineID: 99, qty: 1, expectedErr: inErrors.ErrMedicineNotFound},
		{name: "given zero quantity should fail", medicineID: 1, qty: 0, expectedErr: inErrors.ErrInvalidQuantity},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := context.Background()
			svc, _ := newTestService(t, seedMedicines())

			view, err := svc.AddToCart(c, test.medicineID, test.qty)

			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
				assert.Empty(t, view.Items)
				return
			}
			require.NoError(t, err)
			require.Len(t, view.Items, 1)
			assert.Equal(t, test.qty, view.Items[0].Quantity)
		})
	}
}

func TestRemoveFromCart(t *testing.T) {
	c := context.Background()
	svc, _ := newTestService(t, seedMedicines())
	_, err := svc.AddToCart(c, 1, 1)
	require.NoError(t, err)
	_, err = svc.AddToCart(c, 30, 2)
	require.NoError(t, err)

	_, err = svc.RemoveFromCart(c, 5)
	assert.ErrorIs(t, err, inErrors.ErrInvalidSelection)

	removed, err := svc.RemoveFromCart(c, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed.MedicineID)
	view := svc.Cart(c)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "50", view.Total.String())

	svc.ClearCart(c)
	assert.Empty(t, svc.Cart(c).Items)
}

func TestAddMedicine(t *testing.T) {
	tests := []struct {
		name        string
		input       repository.Medicine
		expectedErr error
	}{
		{
			name:        "given valid medicine should persist it",
			input:       repository.Medicine{ID: 7, Name: "Disprin", Price: decimal.RequireFromString("3.5"), Stock: 50},
			expectedErr: nil,
		},
		{
			name:        "given existing id should fail with duplicate id",
			input:       repository.Medicine{ID: 12, Name: "Other", Price: decimal.NewFromInt(1), Stock: 1},
			expectedErr: inErrors.ErrDuplicateId,
		},
		{
			name:        "given blank name should fail validation",
			input:       repository.Medicine{ID: 7, Name: "", Price: decimal.NewFromInt(1), Stock: 1},
			expectedErr: inErrors.ErrInvalidMedicine,
		},
		{
			name:        "given negative price should fail validation",
			input:       repository.Medicine{ID: 7, Name: "Disprin", Price: decimal.NewFromInt(-1), Stock: 1},
			expectedErr: inErrors.ErrInvalidMedicine,
		},
		{
			name:        "given negative stock should fail validation",
			input:       repository.Medicine{ID: 7, Name: "Disprin", Price: decimal.NewFromInt(1), Stock: -1},
			expectedErr: inErrors.ErrInvalidMedicine,
		},
		{
			name: "given price float64 cannot hold should fail validation",
			input: repository.Medicine{
				ID:    7,
				Name:  "Disprin",
				Price: decimal.RequireFromString("0.12345678901234567891"),
				Stock: 1,
			},
			expectedErr: inErrors.ErrInvalidMedicine,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := context.Background()
			svc, opts := newTestService(t, seedMedicines())

			err := svc.AddMedicine(c, test.input)

			saved, loadErr := repository.NewCatalogFile(opts.DataFile).Load()
			require.NoError(t, loadErr)
			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
				assert.Len(t, saved, 3)
				return
			}
			require.NoError(t, err)
			require.Len(t, saved, 4)
			assert.Equal(t, test.input.ID, saved[3].ID)
		})
	}
}

func TestAddMedicinePriceSurvivesReload(t *testing.T) {
	c := context.Background()
	svc, opts := newTestService(t, seedMedicines())

	price := decimal.RequireFromString("19.99")
	require.NoError(t, svc.AddMedicine(c, repository.Medicine{ID: 7, Name: "Disprin", Price: price, Stock: 5}))
	inSession, err := svc.FindMedicine(c, 7)
	require.NoError(t, err)

	reopened := NewStoreService(c, opts)
	require.NoError(t, reopened.LoadError())
	reloaded, err := reopened.FindMedicine(c, 7)
	require.NoError(t, err)
	assert.True(t, price.Equal(inSession.Price))
	assert.True(t, inSession.Price.Equal(reloaded.Price), "in session=%s reloaded=%s", inSession.Price, reloaded.Price)
}

func TestAddMedicineRollsBackWhenSaveFails(t *testing.T) {
	c := context.Background()
	svc, opts := newTestService(t, seedMedicines())
	breakDataFile(t, opts)

	err := svc.AddMedicine(c, repository.Medicine{ID: 7, Name: "Disprin", Price: decimal.NewFromInt(3), Stock: 5})

	assert.ErrorIs(t, err, inErrors.ErrPersistenceUnavailable)
	_, err = svc.FindMedicine(c, 7)
	assert.ErrorIs(t, err, inErrors.ErrMedicineNotFound)
}

func TestUpdateMedicine(t *testing.T) {
	c := context.Background()
	svc, opts := newTestService(t, seedMedicines())
	fields := repository.MedicineFields{
		Name:    "Paracetamol 500mg",
		Price:   decimal.NewFromInt(12),
		Stock:   8,
		Expiry:  "2027-01-01",
		Company: "GSK",
	}

	_, err := svc.UpdateMedicine(c, 99, fields)
	assert.ErrorIs(t, err, inErrors.ErrMedicineNotFound)

	updated, err := svc.UpdateMedicine(c, 1, fields)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 500mg", updated.Name)

	saved, err := repository.NewCatalogFile(opts.DataFile).Load()
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 500mg", saved[0].Name)
	assert.True(t, saved[0].IsLowStock())

	breakDataFile(t, opts)
	_, err = svc.UpdateMedicine(c, 1, repository.MedicineFields{Name: "Broken", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, inErrors.ErrPersistenceUnavailable)
	m, err := svc.FindMedicine(c, 1)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 500mg", m.Name, "update is rolled back")
}

func TestDeleteMedicine(t *testing.T) {
	c := context.Background()
	svc, opts := newTestService(t, seedMedicines())

	assert.ErrorIs(t, svc.DeleteMedicine(c, 99), inErrors.ErrMedicineNotFound)
	require.NoError(t, svc.DeleteMedicine(c, 12))

	saved, err := repository.NewCatalogFile(opts.DataFile).Load()
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.EqualValues(t, 1, saved[0].ID)
	assert.EqualValues(t, 30, saved[1].ID)

	breakDataFile(t, opts)
	assert.ErrorIs(t, svc.DeleteMedicine(c, 30), inErrors.ErrPersistenceUnavailable)
	_, err = svc.FindMedicine(c, 30)
	assert.NoError(t, err, "delete is rolled back")
}

func TestSearchAndLowStock(t *testing.T) {
	c := context.Background()
	svc, _ := newTestService(t, seedMedicines())

	found := svc.SearchMedicines(c, "AMOX")
	require.Len(t, found, 1)
	assert.EqualValues(t, 12, found[0].ID)

	found = svc.SearchMedicines(c, "1")
	assert.Len(t, found, 2)

	assert.Empty(t, svc.SearchMedicines(c, "zzz"))

	low := svc.LowStock(c)
	require.Len(t, low, 1)
	assert.EqualValues(t, 12, low[0].ID)
}

func TestExpiringMedicines(t *testing.T) {
	c := context.Background()
	svc, _ := newTestService(t, seedMedicines())

	result := svc.ExpiringMedicines(c, 30*24*time.Hour)

	require.Len(t, result.Expired, 1)
	assert.EqualValues(t, 30, result.Expired[0].Medicine.ID)
	require.Len(t, result.ExpiringSoon, 1)
	assert.EqualValues(t, 12, result.ExpiringSoon[0].Medicine.ID)
	assert.Empty(t, result.Unparseable)
}

func TestBackupKindLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "given auto kind should keep it", input: backup.KindAuto, expected: backup.KindAuto},
		{name: "given manual kind should keep it", input: backup.KindManual, expected: backup.KindManual},
		{name: "given scheduled kind should keep it", input: backup.KindScheduled, expected: backup.KindScheduled},
		{name: "given custom kind should map to other", input: "Nightly", expected: metrics.OtherBackupKind},
		{name: "given kind with underscore should map to invalid", input: "bad_kind", expected: metrics.InvalidBackupKind},
		{name: "given empty kind should map to invalid", input: "", expected: metrics.InvalidBackupKind},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, backupKindLabel(test.input))
		})
	}
}

func TestBackupKinds(t *testing.T) {
	c := context.Background()
	svc, _ := newTestService(t, seedMedicines())

	manual, err := svc.Backup(c, backup.KindManual)
	require.NoError(t, err)
	scheduled, err := svc.Backup(c, backup.KindScheduled)
	require.NoError(t, err)
	_, err = svc.Backup(c, "bad_kind")
	assert.ErrorIs(t, err, inErrors.ErrInvalidBackupKind)
	assert.False(t, metrics.Backups.DeleteLabelValues("bad_kind", "failure"))
	assert.True(t, metrics.Backups.DeleteLabelValues(metrics.InvalidBackupKind, "failure"))

	entries, err := svc.Backups(c)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	paths := []string{entries[0].Path, entries[1].Path}
	assert.ElementsMatch(t, []string{manual, scheduled}, paths)
}
