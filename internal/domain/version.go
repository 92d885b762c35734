package domain

// AnyVersion disables the version check on a replace, keeping the
// original last-write-wins behavior for callers that hold no version.
const AnyVersion int64 = -1
