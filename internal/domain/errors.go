package domain

import "errors"

// ErrRunInProgress is returned when a scheduling run is triggered while another one is still running
var ErrRunInProgress = errors.New("scheduling run already in progress")
