package service

import "github.com/postboard/postboard/shared/domain"

// AuthorizeOwnerAction allows an action on a resource only to its owner.
// Callers must have confirmed the resource exists.
func AuthorizeOwnerAction(ownerId, currentUserId domain.UserId) error {
	if ownerId != currentUserId {
		return ErrForbidden
	}
	return nil
}
