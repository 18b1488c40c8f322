package core

import "errors"

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidTerrain     = errors.New("invalid terrain data")
	ErrDuplicateSquad     = errors.New("squad already exists")
	ErrSquadNotFound      = errors.New("squad not found")
)
