package ticket

import "errors"

// Error variables shared across the engine packages.
var (
	ErrConfigFileRead = errors.New("cannot read config file")
	ErrConfigInvalid  = errors.New("invalid config file")
	ErrRootDirEmpty   = errors.New("root_dir cannot be empty")
)
