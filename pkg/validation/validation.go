// Package validation provides input validation and sanitization for commands
// arriving over the network before they reach the simulation.
package validation

import (
	"encoding/json"
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/cyohn55/RTS/pkg/physics"
)

// Message size and content limits
const (
	MaxMessageSize    = 64 * 1024 // 64KB max message
	MaxPlayerNameLen  = 32
	MaxMessagesPerMin = 100
	MaxOrderUnits     = 256 // units addressable by a single order
	SpeciesPerPlayer  = 3
)

// Allow alphanumeric, spaces, hyphens, underscores, and basic punctuation for
// player names. This prevents most special characters that could cause issues
// while allowing reasonable names.
var validPlayerNameChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.<>()]+$`)

// MessageValidator provides validation for raw client messages
type MessageValidator struct {
	rateLimiter *RateLimiter
}

// NewMessageValidator creates a new message validator with rate limiting
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{
		rateLimiter: NewRateLimiter(MaxMessagesPerMin, time.Minute),
	}
}

// Close releases resources used by the message validator
func (v *MessageValidator) Close() {
	if v.rateLimiter != nil {
		v.rateLimiter.Close()
	}
}

// ValidateMessage validates a raw message against size and format constraints
func (v *MessageValidator) ValidateMessage(data []byte, clientID string) error {
	if len(data) > MaxMessageSize {
		return fmt.Errorf("message too large: %d bytes (max %d)", len(data), MaxMessageSize)
	}

	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON format")
	}

	if !v.rateLimiter.Allow(clientID) {
		return fmt.Errorf("rate limit exceeded: max %d messages per minute", MaxMessagesPerMin)
	}

	return nil
}

// ValidatePlayerName validates and sanitizes a player name
func ValidatePlayerName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("player name cannot be empty")
	}

	if len(name) > MaxPlayerNameLen {
		return "", fmt.Errorf("player name too long: %d characters (max %d)", len(name), MaxPlayerNameLen)
	}

	if !utf8.ValidString(name) {
		return "", fmt.Errorf("player name contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("player name cannot be only whitespace")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("player name contains control characters")
		}
	}

	if !validPlayerNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("player name contains invalid characters (only alphanumeric, spaces, hyphens, underscores, and basic punctuation allowed)")
	}

	// Escape HTML to prevent XSS in any web-facing spectator view
	sanitized := html.EscapeString(trimmed)

	return sanitized, nil
}

// ValidateSpeciesSelection checks a player's species roster: exactly three
// picks, each a known species key, with no duplicates.
func ValidateSpeciesSelection(keys []string, known map[string]bool) error {
	if len(keys) != SpeciesPerPlayer {
		return fmt.Errorf("selected %d species, must select exactly %d", len(keys), SpeciesPerPlayer)
	}
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if !known[key] {
			return fmt.Errorf("unknown species: %q", key)
		}
		if seen[key] {
			return fmt.Errorf("duplicate species: %q", key)
		}
		seen[key] = true
	}
	return nil
}

// ValidateMoveTarget rejects order targets that are non-finite or outside the
// playable area. worldSize is the half-extent of the square world on each
// axis.
func ValidateMoveTarget(target physics.Vector3, worldSize float64) error {
	for _, v := range []float64{target.X, target.Y, target.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("move target contains a non-finite coordinate")
		}
	}
	if math.Abs(target.X) > worldSize || math.Abs(target.Z) > worldSize {
		return fmt.Errorf("move target (%.1f, %.1f) outside world bounds (±%.0f)", target.X, target.Z, worldSize)
	}
	return nil
}

// ValidateOrderUnitCount bounds how many units one order may address
func ValidateOrderUnitCount(n int) error {
	if n == 0 {
		return fmt.Errorf("order addresses no units")
	}
	if n > MaxOrderUnits {
		return fmt.Errorf("order addresses %d units (max %d)", n, MaxOrderUnits)
	}
	return nil
}
