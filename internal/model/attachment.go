package model

import (
	"context"
	"errors"
	"strings"
)

// Attachment references are opaque strings: either a Telegram file id or a
// literal text payload carrying the TextAttachmentPrefix. Consumers branch on
// the prefix to decide whether to re-send as a message or as a file.
const TextAttachmentPrefix = "text:"

func NewTextAttachment(payload string) string {
	return TextAttachmentPrefix + payload
}

func IsTextAttachment(ref string) bool {
	return strings.HasPrefix(ref, TextAttachmentPrefix)
}

func TextAttachmentPayload(ref string) string {
	return strings.TrimPrefix(ref, TextAttachmentPrefix)
}

// ErrDuplicateAttachment signals the dedup no-op: the reference is already
// stored for the task. It is not a failure.
var ErrDuplicateAttachment = errors.New("attachment already present")

type AttachmentRepository interface {
	// AddAttachment appends ref to the task's ordered attachment list.
	// Returns ErrDuplicateAttachment when ref is already present.
	AddAttachment(ctx context.Context, taskID int, ref string) error
	ListAttachments(ctx context.Context, taskID int) ([]string, error)
}
