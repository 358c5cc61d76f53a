package history

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/robgonnella/portsweep/internal/exception"
	"github.com/robgonnella/portsweep/internal/scanner"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SqliteRepo is our repo implementation for sqlite
type SqliteRepo struct {
	db *gorm.DB
}

// NewSqliteDatabase opens and migrates the sqlite database at dbFile
func NewSqliteDatabase(dbFile string) (*gorm.DB, error) {
	if dbFile == "" {
		return nil, errors.New("database file path cannot be empty")
	}

	db, err := gorm.Open(sqlite.Open(dbFile), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})

	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&RecordModel{}); err != nil {
		return nil, err
	}

	return db, nil
}

// NewSqliteRepo returns a new history sqlite repo
func NewSqliteRepo(db *gorm.DB) *SqliteRepo {
	return &SqliteRepo{
		db: db,
	}
}

// Get returns a record from the db
func (r *SqliteRepo) Get(id string) (*Record, error) {
	if id == "" {
		return nil, errors.New("record id cannot be empty")
	}

	model := RecordModel{}

	if result := r.db.First(&model, "id = ?", id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, exception.ErrRecordNotFound
		}

		return nil, result.Error
	}

	return modelToRecord(&model)
}

// GetAll returns all records in db, most recent first
func (r *SqliteRepo) GetAll() ([]*Record, error) {
	models := []RecordModel{}

	if result := r.db.Order("scanned_at desc").Find(&models); result.Error != nil {
		return nil, result.Error
	}

	records := []*Record{}

	for i := range models {
		rec, err := modelToRecord(&models[i])

		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	return records, nil
}

// Create creates a new record in db
func (r *SqliteRepo) Create(record *Record) (*Record, error) {
	if record.Target == "" {
		return nil, errors.New("record target cannot be empty")
	}

	model, err := recordToModel(record)

	if err != nil {
		return nil, err
	}

	if model.ID == "" {
		model.ID = uuid.New().String()
	}

	if result := r.db.Create(model); result.Error != nil {
		return nil, result.Error
	}

	return modelToRecord(model)
}

// Delete deletes a record from db
func (r *SqliteRepo) Delete(id string) error {
	if id == "" {
		return errors.New("record id cannot be empty")
	}

	result := r.db.Delete(&RecordModel{ID: id})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return exception.ErrRecordNotFound
	}

	return nil
}

// helpers
func modelToRecord(model *RecordModel) (*Record, error) {
	results := []scanner.PortResult{}

	if err := json.Unmarshal([]byte(model.Results.String()), &results); err != nil {
		return nil, err
	}

	return &Record{
		ID:        model.ID,
		Target:    model.Target,
		Address:   model.Address,
		ScannedAt: model.ScannedAt,
		Elapsed:   model.Elapsed,
		Results:   results,
	}, nil
}

func recordToModel(record *Record) (*RecordModel, error) {
	results := record.Results

	if results == nil {
		results = []scanner.PortResult{}
	}

	resultBytes, err := json.Marshal(results)

	if err != nil {
		return nil, err
	}

	return &RecordModel{
		ID:        record.ID,
		Target:    record.Target,
		Address:   record.Address,
		OpenCount: record.Open(),
		ScannedAt: record.ScannedAt,
		Elapsed:   record.Elapsed,
		Results:   datatypes.JSON(resultBytes),
	}, nil
}
