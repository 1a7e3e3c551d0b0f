package main

import (
	"fmt"
	"os"

	"github.com/foundly/foundly-server/foundlyservice"
)

func main() {
	if err := foundlyservice.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
