package model

import "github.com/google/uuid"

// Document is the metadata of a file kept in object storage.
type Document struct {
	Base
	ProjectID    *uuid.UUID `gorm:"type:uuid;index" json:"projectId,omitempty"`
	ProgramID    *uuid.UUID `gorm:"type:uuid;index" json:"programId,omitempty"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
	FileKey      string     `gorm:"type:varchar(512);not null;comment:object storage key" json:"fileKey"`
	MimeType     string     `gorm:"type:varchar(128);not null" json:"mimeType"`
	SizeBytes    int64      `gorm:"not null;default:0" json:"sizeBytes"`
	UploadedByID uuid.UUID  `gorm:"type:uuid;not null" json:"uploadedById"`
}

func (Document) Kind() Kind { return KindDocument }
