package memory

import "github.com/Neperienx/souvella-web-sub000/pkg/domain/model"

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = model.ErrNotFound
