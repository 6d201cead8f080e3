package main

import (
	"fmt"
	"log"

	"github.com/postboard/postboard/shared/crypto"
)

func main() {
	key, err := crypto.GenerateSigningKey()
	if err != nil {
		log.Fatalf("Failed to generate signing key: %v", err)
	}

	fmt.Println("=================================================")
	fmt.Println("  Access token signing key (HS256)")
	fmt.Println("=================================================")
	fmt.Println()
	fmt.Println("Generated key (base64):")
	fmt.Println(key)
	fmt.Println()
	fmt.Println("Provide it through the environment:")
	fmt.Printf("export POSTBOARD_JWT_KEY=\"%s\"\n", key)
	fmt.Println()
	fmt.Println("or add it to your config/private.yaml:")
	fmt.Printf("jwt_key: \"%s\"\n", key)
	fmt.Println()
	fmt.Println("IMPORTANT:")
	fmt.Println("- Keep this key secret and out of version control!")
	fmt.Println("- Changing the key logs out every user.")
	fmt.Println("=================================================")
}
