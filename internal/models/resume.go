package models

// ResumeMeta describes the resume file stored in the public asset area.
// Either every field is zero or FileName names a stored file.
type ResumeMeta struct {
	FileName     string `json:"fileName"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size" validate:"gte=0"`
}

// DefaultResume is the "no resume" value.
func DefaultResume() ResumeMeta { return ResumeMeta{} }

// Empty reports whether no resume is attached.
func (r ResumeMeta) Empty() bool {
	return r.FileName == "" && r.OriginalName == "" && r.Size == 0
}
