// Package models defines comp file attachments.
package models

import (
	"time"

	id "comphub/pkg/domain"
)

// File is the metadata row for one uploaded attachment. The bytes live in
// blob storage under StoragePath; the row only describes them.
type File struct {
	ID               id.FileID
	CompID           id.CompID
	TeamID           id.TeamID
	StoragePath      string
	OriginalFilename string
	MimeType         *string
	SizeBytes        *int64
	CreatedAt        time.Time
	CreatedBy        id.UserID
}
