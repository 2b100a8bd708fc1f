// genhash prints the bcrypt hash of an operator PIN, for manual inserts.
// Usage: genhash <pin>
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) != 2 || len(os.Args[1]) < 4 {
		fmt.Fprintln(os.Stderr, "usage: genhash <pin> (min 4 digits)")
		os.Exit(2)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), 12)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(h))
}
