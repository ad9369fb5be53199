package domain

import "time"

// AvatarImage is the stored metadata for an uploaded avatar file.
// The file itself lives on disk under the configured avatar directory;
// Filename is the generated on-disk name, not the client's original name.
type AvatarImage struct {
	ID        string
	FrogolID  string
	Filename  string
	CreatedAt time.Time
}
