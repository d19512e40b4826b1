package main

import (
	cmd "github.com/Kazbonfim/rocketseat-downloader2/cmd/rocketseat"
)

func main() {
	cmd.Execute()
}
