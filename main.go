package main

import (
	"log"

	"cinema-ticket/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
