package main

import (
	"fmt"
	"os"

	"github.com/haukened/bindmgr/internal/dns/common/log"
)

func main() {
	err := newRootCmd().Execute()
	log.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
