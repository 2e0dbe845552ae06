package sandbox

import "errors"

// Capabilities the sandboxed context never provides. These fail with a fixed
// message instead of attempting partial support.
var (
	ErrAsyncUnsupported   = errors.New("Async operations are not supported in Signal Deck.")
	ErrSyscallUnsupported = errors.New("OS/filesystem operations are not supported in Signal Deck.")
)
