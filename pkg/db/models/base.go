package models

import (
	"github.com/google/uuid"
)

// ensureID assigns a random UUID when the primary key is still zero. Postgres
// also defaults ids via gen_random_uuid(); SQLite relies on this hook.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
