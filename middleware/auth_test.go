package middleware

import (
	"sync"
	"testing"
)

func TestIsAdminEmailConcurrent(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", "admin@example.com, Second@Example.com")

	// First lookups race to build the allow-list the way parallel requests
	// do right after startup.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if !IsAdminEmail("admin@example.com") {
					t.Error("Expected allow-list member to be admin")
					return
				}
				if IsAdminEmail("stranger@example.com") {
					t.Error("Expected non-member to be denied")
					return
				}
			}
		}()
	}
	wg.Wait()

	if !IsAdminEmail("SECOND@example.com") {
		t.Error("Expected case-insensitive allow-list match")
	}
	if IsAdminEmail("") {
		t.Error("Expected empty email to be denied")
	}
}
