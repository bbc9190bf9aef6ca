package firestore

import "github.com/Neperienx/souvella-web-sub000/pkg/domain/model"

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = model.ErrNotFound
