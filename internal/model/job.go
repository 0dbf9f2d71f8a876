package model

// UploadJob is the immutable payload carried by the job queue from the
// gateway to a worker. It is created once at upload time and never mutated;
// the queue treats it as opaque.
type UploadJob struct {
	UploadID   string `json:"uploadId"`
	DocumentID string `json:"documentId"`
	ObjectKey  string `json:"objectKey"`
	OwnerID    string `json:"ownerId"`
}
