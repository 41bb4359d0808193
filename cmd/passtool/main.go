// passtool hashes a password for pasting into a user document's
// passwordHash field.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

var cost = flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")

func do() error {
	fmt.Print("Password: ")
	pass, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("while reading password: %w", err)
	}
	fmt.Println()

	hash, err := bcrypt.GenerateFromPassword(pass, *cost)
	if err != nil {
		return fmt.Errorf("while hashing password: %w", err)
	}

	fmt.Println(string(hash))
	return nil
}

func main() {
	flag.Parse()

	if err := do(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
