package importcfg

import "errors"

// Failure kinds of an import config check. They are wrapped with context and
// never returned from ChooseMode or Extract, which collapse them to
// ImportModeNone or an empty ImportResult.
var (
	// ErrParse is returned when a config cannot be read or is not valid JSON.
	ErrParse = errors.New("config is unreadable or malformed")

	// ErrSchema is returned when a required key is missing or has the wrong type.
	ErrSchema = errors.New("config is missing a required key")

	// ErrReferential is returned when a referenced file does not exist.
	ErrReferential = errors.New("referenced file does not exist")

	// ErrCountMismatch is returned when the chunk grid size does not match the chunk data.
	ErrCountMismatch = errors.New("chunk count does not match grid size")

	// ErrNoChunkData is returned when the chunk grid is empty.
	ErrNoChunkData = errors.New("no chunk data available")
)
