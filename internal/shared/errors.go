package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")

	// Selection and input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrTooManyFiles    = fmt.Errorf("too many files selected")
	ErrNoFiles         = fmt.Errorf("no files selected")
	ErrEmptyName       = fmt.Errorf("name is empty")
	ErrNoTracks        = fmt.Errorf("no analyzed tracks")

	// Playback errors
	ErrEmptyPlaylist    = fmt.Errorf("playlist is empty")
	ErrNoMatchingFiles  = fmt.Errorf("no selected files match the playlist")
	ErrIndexOutOfRange  = fmt.Errorf("track index out of range")
	ErrPlaybackRejected = fmt.Errorf("playback was rejected")
	ErrNoSession        = fmt.Errorf("no active playback session")

	// Request coordination errors
	ErrRequestPending = fmt.Errorf("request already in progress")
	ErrStaleResponse  = fmt.Errorf("response superseded by a newer request")
)
