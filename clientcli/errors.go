package clientcli

import "errors"

// Errors for input validation.
var (
	ErrNoGUIDs         = errors.New("no guids provided")
	ErrEmptyGUID       = errors.New("guid is required")
	ErrNoPaths         = errors.New("no paths provided")
	ErrNoAttributes    = errors.New("no attributes provided")
	ErrAttributeFormat = errors.New("attribute must be key=value")
)
