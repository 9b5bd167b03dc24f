package main

import (
	"github.com/meta-secret/meta-secret/app/device/internal/cmd"
)

func main() {
	cmd.Initialize()
	cmd.Execute()
}
