// Package event defines the processing-event envelope exchanged between the
// worker and the gateway's internal ingress, and its kind-specific payloads.
// Events are transient: they are validated at the boundary, applied to the
// document store, forwarded to subscribers, and never persisted.
package event

// SecretHeader is the HTTP header carrying the shared secret that
// authenticates posts to the internal event ingress.
const SecretHeader = "X-Internal-Secret"

// Kind identifies a processing-event variant.
type Kind string

const (
	KindProgress  Kind = "progress"
	KindCompleted Kind = "completed"
	KindError     Kind = "error"
)

// Known reports whether the kind is one the gateway applies to the store.
// Unknown kinds are accepted and ignored so newer workers can roll out ahead
// of the gateway.
func (k Kind) Known() bool {
	switch k {
	case KindProgress, KindCompleted, KindError:
		return true
	}
	return false
}

// Envelope is the wire form posted to the internal ingress.
// OwnerID and Event are mandatory; Data is interpreted per kind.
type Envelope struct {
	OwnerID string `json:"ownerId"`
	Event   Kind   `json:"event"`
	Data    Data   `json:"data"`
}

// Data carries the union of per-kind fields. Only the fields relevant to the
// envelope's kind are meaningful; the rest stay at their zero values.
type Data struct {
	UploadID     string   `json:"uploadId,omitempty"`
	DocumentID   string   `json:"documentId,omitempty"`
	Progress     int      `json:"progress,omitempty"`
	Status       string   `json:"status,omitempty"`
	Total        *float64 `json:"total,omitempty"`
	ProcessingMs int64    `json:"processingMs,omitempty"`
	ObjectKey    string   `json:"objectKey,omitempty"`
	Reason       string   `json:"reason,omitempty"`
}

// Progress constructs a progress envelope.
func Progress(ownerID, uploadID, documentID string, percent int) Envelope {
	return Envelope{
		OwnerID: ownerID,
		Event:   KindProgress,
		Data:    Data{UploadID: uploadID, DocumentID: documentID, Progress: percent},
	}
}

// Completed constructs a terminal success envelope.
func Completed(ownerID, uploadID, documentID, objectKey string, processingMs int64, total *float64) Envelope {
	return Envelope{
		OwnerID: ownerID,
		Event:   KindCompleted,
		Data: Data{
			UploadID:     uploadID,
			DocumentID:   documentID,
			Status:       "Processed",
			ProcessingMs: processingMs,
			ObjectKey:    objectKey,
			Total:        total,
		},
	}
}

// Error constructs a terminal failure envelope.
func Error(ownerID, uploadID, documentID, reason string) Envelope {
	return Envelope{
		OwnerID: ownerID,
		Event:   KindError,
		Data:    Data{UploadID: uploadID, DocumentID: documentID, Status: "Error", Reason: reason},
	}
}
