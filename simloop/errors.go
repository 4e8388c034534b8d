package simloop

import "errors"

// ErrUnknownPhone is reported to the shell and otherwise ignored by the
// core: an event referenced a phone id absent from the directory.
var ErrUnknownPhone = errors.New("simloop: unknown phone")

// ErrQuit is returned by Dispatch for a Quit event, after the results
// file has been written; callers use errors.Is to recognize a graceful
// shutdown rather than a failure.
var ErrQuit = errors.New("simloop: quit")
