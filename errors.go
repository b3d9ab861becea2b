package ngio

import "errors"

var (
	// ErrNoCore is an exported constant or variable used by the session engine.
	ErrNoCore = errors.New("no service core attached")
	// ErrNoPassportURL is an exported constant or variable used by the session engine.
	ErrNoPassportURL = errors.New("no passport url issued")
	// ErrComponentUnknown is an exported constant or variable used by the session engine.
	ErrComponentUnknown = errors.New("unknown component")
	// ErrResultMissing is an exported constant or variable used by the session engine.
	ErrResultMissing = errors.New("response carried no result for component")
	// ErrBuilderUsed is an exported constant or variable used by the session engine.
	ErrBuilderUsed = errors.New("builder already used")
)
