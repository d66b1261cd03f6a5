package importbundle

import (
	"path/filepath"
	"testing"

	"github.com/bkabbarah/coachkit/app/clientbundle"
	"github.com/bkabbarah/coachkit/app/core"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ormDB, err := core.OpenSQLite(filepath.Join(t.TempDir(), "coachkit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ormDB.Close() })
	require.NoError(t, ormDB.AutoMigrate(&clientbundle.Client{}, &clientbundle.CheckIn{}).Error)
	return ormDB
}

func ptr[T any](v T) *T { return &v }

func TestGormRecordStoreSaveImport(t *testing.T) {
	ormDB := openTestDB(t)
	store := NewGormRecordStore(ormDB, 5)

	result, err := store.SaveImport(3, []ImportRecord{
		{Name: "Alice", Email: ptr("alice@example.com"), GoalWeight: ptr(135.0), Weight: ptr(150.0)},
		{Name: "Bob", Notes: ptr("prefers mornings")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.ClientsCreated)
	assert.Equal(t, 1, result.CheckInsCreated)

	clients := clientbundle.Clients{}
	require.NoError(t, ormDB.Where("coach_id = ?", 3).Order("id").Find(&clients).Error)
	require.Len(t, clients, 2)

	alice, err := clientbundle.LoadClient(ormDB, 3, clients[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", alice.Name)
	assert.Equal(t, "alice@example.com", *alice.Email)
	assert.Equal(t, 135.0, *alice.GoalWeight)
	require.Len(t, alice.CheckIns, 1)
	assert.Equal(t, clientbundle.ImportedCheckInNote, alice.CheckIns[0].Note)
	assert.Equal(t, 150.0, *alice.CheckIns[0].Weight)
	assert.True(t, alice.LastCheckin.Valid)
	assert.Equal(t, clientbundle.StatusOnTrack, alice.Status)

	bob, err := clientbundle.LoadClient(ormDB, 3, clients[1].ID)
	require.NoError(t, err)
	assert.Empty(t, bob.CheckIns)
	assert.Nil(t, bob.Email)
	assert.Equal(t, "prefers mornings", *bob.Notes)

	_, err = clientbundle.LoadClient(ormDB, 4, clients[0].ID)
	assert.ErrorIs(t, err, clientbundle.ErrClientNotFound)
}

func TestGormRecordStoreIsAtomic(t *testing.T) {
	ormDB := openTestDB(t)
	require.NoError(t, ormDB.DropTable(&clientbundle.CheckIn{}).Error)
	store := NewGormRecordStore(ormDB, 5)

	_, err := store.SaveImport(3, []ImportRecord{
		{Name: "Alice"},
		{Name: "Bob", Weight: ptr(180.0)},
	})
	require.Error(t, err)

	var count int
	require.NoError(t, ormDB.Model(&clientbundle.Client{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGormRecordStoreEmptyBatch(t *testing.T) {
	result, err := NewGormRecordStore(openTestDB(t), 5).SaveImport(1, nil)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{}, result)
}
