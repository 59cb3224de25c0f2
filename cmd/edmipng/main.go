// Command edmipng encodes and decodes messages in PNG chunks.
package main

import (
	"log"
	"os"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("edmipng: ")
	if err := newRootCmd(newApp()).Execute(); err != nil {
		os.Exit(1)
	}
}
