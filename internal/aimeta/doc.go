// Package aimeta talks to an OpenRouter-compatible chat completion API to
// judge filename clarity and synthesize software metadata, with a heuristic
// fallback when the provider is unavailable.
package aimeta
