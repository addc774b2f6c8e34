package dto

import (
	"github.com/google/uuid"
	"mymemorycard.com/backend/pkg/apperror"
)

const (
	MsgInvalidTargetType = `targetType doit être "review" ou "memory"`
	MsgInvalidTargetID   = "targetId invalide"
)

// ParseTarget validates a likeable or commentable reference.
func ParseTarget(targetType, targetID string) (string, uuid.UUID, error) {
	if targetType != "review" && targetType != "memory" {
		return "", uuid.Nil, apperror.BadRequest(MsgInvalidTargetType)
	}
	id, err := uuid.Parse(targetID)
	if err != nil {
		return "", uuid.Nil, apperror.BadRequest(MsgInvalidTargetID)
	}
	return targetType, id, nil
}
