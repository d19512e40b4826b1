package screens

import "github.com/Kazbonfim/rocketseat-downloader2/pkg/data"

// SwitchScreenMsg asks the root screen to change views.
type SwitchScreenMsg struct {
	Screen string
	Data   any
}

// DownloadRequest carries everything the download screen needs to start.
type DownloadRequest struct {
	Specialization data.Specialization
	Selection      string
}
