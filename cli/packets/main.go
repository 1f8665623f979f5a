package main

import (
	"os"

	packetscmder "github.com/mountainvillage/packets/cmd/packets"
)

func main() {
	cmd := packetscmder.NewPacketsCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
