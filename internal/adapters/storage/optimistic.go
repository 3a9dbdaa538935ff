package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"devboard/internal/domain"
	"devboard/internal/metrics"
)

type versionRow struct {
	UpdatedAt time.Time
	Version   int
}

// currentVersion reads the stored version of a versioned row
func currentVersion(tx *gorm.DB, table, entity, id string) (versionRow, error) {
	var row versionRow
	err := tx.Table(table).Select("version", "updated_at").Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, domain.NotFound(entity, id)
	}
	return row, err
}

// checkVersion fails with a version conflict when expected does not match
func checkVersion(entity, id string, expected int, row versionRow) error {
	if expected == domain.AnyVersion || expected == row.Version {
		return nil
	}
	metrics.VersionConflicts.WithLabelValues(entity).Inc()
	return &domain.VersionConflictError{Entity: entity, ID: id, Expected: expected, Actual: row.Version}
}

// guardVersion fails with a version conflict when the stored version of id
// does not match expected. Updates call it before validating their patch.
func guardVersion(tx *gorm.DB, table, entity, id string, expected int) error {
	row, err := currentVersion(tx, table, entity, id)
	if err != nil {
		return err
	}
	return checkVersion(entity, id, expected, row)
}

// updateVersioned applies changes to a versioned row when its stored version
// equals expected, bumping the version by one and moving updated_at forward.
// On mismatch nothing is written.
func updateVersioned(tx *gorm.DB, table, entity, id string, expected int, changes map[string]any) error {
	row, err := currentVersion(tx, table, entity, id)
	if err != nil {
		return err
	}
	if err := checkVersion(entity, id, expected, row); err != nil {
		return err
	}

	values := make(map[string]any, len(changes)+2)
	for k, v := range changes {
		values[k] = v
	}
	values["version"] = row.Version + 1
	values["updated_at"] = nextTimestamp(row.UpdatedAt)

	res := tx.Table(table).Where("id = ? AND version = ?", id, row.Version).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Another writer got in between the read and the write
		metrics.VersionConflicts.WithLabelValues(entity).Inc()
		return &domain.VersionConflictError{Entity: entity, ID: id, Expected: row.Version, Actual: row.Version + 1}
	}
	return nil
}

// nextTimestamp returns the current time, or prev plus a microsecond when the
// clock has not moved past prev.
func nextTimestamp(prev time.Time) time.Time {
	t := now()
	if !t.After(prev) {
		t = prev.Add(time.Microsecond)
	}
	return t
}
