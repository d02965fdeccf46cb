package repository

import "errors"

var (
	// ErrNotFound возвращается, когда агрегат отсутствует в базе.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict возвращается, когда условная запись не прошла проверку версии.
	ErrVersionConflict = errors.New("version conflict")
	// ErrDuplicate возвращается при нарушении уникального ограничения.
	ErrDuplicate = errors.New("duplicate record")
)
