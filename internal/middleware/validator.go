package middleware

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
)

// Input validation and sanitization utilities

// ValidateURL validates scan target URLs
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (allowed: http, https)", u.Scheme)
	}

	// Check for localhost/internal IPs (SSRF protection)
	host := strings.ToLower(u.Hostname())
	blocked := []string{"localhost", "127.0.0.1", "0.0.0.0", "[::]", "::1"}
	for _, b := range blocked {
		if strings.Contains(host, b) {
			return fmt.Errorf("localhost/internal IPs are not allowed")
		}
	}

	// Block private IP ranges (basic check)
	if strings.HasPrefix(host, "10.") ||
		strings.HasPrefix(host, "192.168.") ||
		strings.HasPrefix(host, "172.16.") ||
		strings.HasPrefix(host, "172.31.") {
		return fmt.Errorf("private IP ranges are not allowed")
	}

	return nil
}

// ValidateEmail checks the buyer email is an addressable mailbox
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidateStandard checks the requested compliance standard
func ValidateStandard(standard string) error {
	if standard == "" {
		return nil // defaulted downstream
	}
	allowed := map[string]bool{
		"WCAG_2_2_AA": true,
		"IL_5568":     true,
	}
	if !allowed[standard] {
		return fmt.Errorf("invalid standard: %s (allowed: WCAG_2_2_AA, IL_5568)", standard)
	}
	return nil
}

// ValidateLocale checks the requested report locale
func ValidateLocale(locale string) error {
	if locale == "" {
		return nil // defaulted downstream
	}
	if locale != "he" && locale != "en" {
		return fmt.Errorf("invalid locale: %s (allowed: he, en)", locale)
	}
	return nil
}
