package main

import (
	"recording-whisper/cmd/a2t/cmd"
)

func main() {
	cmd.Execute()
}
