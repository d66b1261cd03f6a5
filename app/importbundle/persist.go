package importbundle

import (
	"time"

	"github.com/bkabbarah/coachkit/app/clientbundle"
	"github.com/bkabbarah/coachkit/app/core"
	"github.com/jinzhu/gorm"
)

// GormRecordStore writes imports as clients and check-ins.
type GormRecordStore struct {
	ormDB         *gorm.DB
	thresholdDays int
}

func NewGormRecordStore(ormDB *gorm.DB, thresholdDays int) *GormRecordStore {
	return &GormRecordStore{ormDB: ormDB, thresholdDays: thresholdDays}
}

// SaveImport stores all records or none.
func (s *GormRecordStore) SaveImport(coachId uint, records []ImportRecord) (ImportResult, error) {
	var result ImportResult
	err := clientbundle.Transaction(s.ormDB, func(tx *gorm.DB) error {
		for _, rec := range records {
			client := clientbundle.Client{
				CoachId:    coachId,
				Name:       rec.Name,
				Email:      rec.Email,
				GoalWeight: rec.GoalWeight,
				Notes:      rec.Notes,
				Status:     clientbundle.StatusOnTrack,
			}
			if err := tx.Create(&client).Error; err != nil {
				return err
			}
			result.ClientsCreated++

			if rec.Weight == nil {
				continue
			}
			checkIn := clientbundle.CheckIn{
				ClientId: client.ID,
				Note:     clientbundle.ImportedCheckInNote,
				Weight:   rec.Weight,
			}
			if err := tx.Create(&checkIn).Error; err != nil {
				return err
			}
			client.LastCheckin = core.NewNullTime(checkIn.CreatedAt)
			client.Status = client.StatusLabel(time.Now(), s.thresholdDays)
			if err := tx.Model(&client).Updates(map[string]interface{}{
				"last_checkin": client.LastCheckin,
				"status":       client.Status,
			}).Error; err != nil {
				return err
			}
			result.CheckInsCreated++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return result, nil
}
