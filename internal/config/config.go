// Package config provides environment configuration helpers for
// worldfair-connect commands.
package config

import (
	"fmt"
	"os"
)

// Env returns the value of the named environment variable,
// falling back to the provided default if not set.
func Env(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// EnvRequired returns the value of the named environment variable.
// Exits with a usage message if not set.
func EnvRequired(name string) string {
	v := os.Getenv(name)
	if v == "" {
		fmt.Fprintf(os.Stderr, "Error: %s environment variable is required\n", name)
		fmt.Fprintf(os.Stderr, "Usage: %s=... go run ./cmd/bot\n", name)
		os.Exit(1)
	}
	return v
}

// SupabaseURL returns the Supabase project URL from SUPABASE_URL.
func SupabaseURL() string {
	return EnvRequired("SUPABASE_URL")
}

// SupabaseKey returns the Supabase anon key from SUPABASE_ANON_KEY.
func SupabaseKey() string {
	return EnvRequired("SUPABASE_ANON_KEY")
}

// GoogleAPIKey returns the Gemini API key from GOOGLE_API_KEY.
func GoogleAPIKey() string {
	return EnvRequired("GOOGLE_API_KEY")
}
