package models

// Patch types carry the optional fields of a partial update. Merging onto
// the previously fetched record happens here, before any store call, so the
// repositories only ever see complete replacement records.

type UserPatch struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	AvatarURL *string `json:"avatar_url"`
	Status    *string `json:"status"`
}

// Apply merges the patch onto an existing user. The password field is not
// handled here: hashing belongs to the handler, which sets PasswordHash on
// the returned record itself.
func (p UserPatch) Apply(existing User) User {
	updated := existing

	if p.Username != nil {
		updated.Username = *p.Username
	}
	if p.Email != nil {
		updated.Email = *p.Email
	}
	if p.AvatarURL != nil {
		updated.AvatarURL = p.AvatarURL
	}
	if p.Status != nil {
		updated.Status = *p.Status
	}

	return updated
}

type ServerPatch struct {
	Name        *string `json:"name"`
	OwnerUserID *int64  `json:"owner_user_id"`
	IconURL     *string `json:"icon_url"`
}

func (p ServerPatch) Apply(existing Server) Server {
	updated := existing

	if p.Name != nil {
		updated.ServerName = *p.Name
	}
	if p.OwnerUserID != nil {
		updated.OwnerUserID = *p.OwnerUserID
	}
	if p.IconURL != nil {
		updated.IconURL = p.IconURL
	}

	return updated
}
