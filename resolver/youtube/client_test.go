package youtube

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func testOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token.json")

	original := &oauth2.Token{
		AccessToken:  "original-access",
		RefreshToken: "original-refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}
	if err := saveToken(tokenFile, original); err != nil {
		t.Fatalf("saveToken() error: %v", err)
	}

	loaded, err := tokenFromFile(tokenFile)
	if err != nil {
		t.Fatalf("tokenFromFile() error: %v", err)
	}
	if loaded.AccessToken != original.AccessToken {
		t.Errorf("AccessToken = %q, want %q", loaded.AccessToken, original.AccessToken)
	}
	if loaded.RefreshToken != original.RefreshToken {
		t.Errorf("RefreshToken = %q, want %q", loaded.RefreshToken, original.RefreshToken)
	}

	info, err := os.Stat(tokenFile)
	if err != nil {
		t.Fatalf("stat token file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("token file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestTokenFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("NonExistentFile", func(t *testing.T) {
		if _, err := tokenFromFile(filepath.Join(dir, "missing.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(bad, []byte("not json"), 0600); err != nil {
			t.Fatalf("write file: %v", err)
		}
		if _, err := tokenFromFile(bad); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}

func TestSaveToken(t *testing.T) {
	dir := t.TempDir()

	t.Run("CreatesNestedDirectory", func(t *testing.T) {
		nested := filepath.Join(dir, "nested", "deeper", "token.json")
		if err := saveToken(nested, &oauth2.Token{AccessToken: "nested"}); err != nil {
			t.Fatalf("saveToken() error: %v", err)
		}
		if _, err := os.Stat(nested); err != nil {
			t.Errorf("token file not created: %v", err)
		}
	})

	t.Run("OverwritesExisting", func(t *testing.T) {
		tokenFile := filepath.Join(dir, "token.json")
		if err := saveToken(tokenFile, &oauth2.Token{AccessToken: "first"}); err != nil {
			t.Fatalf("saveToken() error: %v", err)
		}
		if err := saveToken(tokenFile, &oauth2.Token{AccessToken: "second"}); err != nil {
			t.Fatalf("saveToken() error: %v", err)
		}
		saved, err := tokenFromFile(tokenFile)
		if err != nil {
			t.Fatalf("tokenFromFile() error: %v", err)
		}
		if saved.AccessToken != "second" {
			t.Errorf("AccessToken = %q, want the overwriting token", saved.AccessToken)
		}
	})
}

func TestGetToken(t *testing.T) {
	dir := t.TempDir()

	t.Run("ValidTokenOnDisk", func(t *testing.T) {
		tokenFile := filepath.Join(dir, "valid.json")
		valid := &oauth2.Token{
			AccessToken:  "valid-access",
			RefreshToken: "valid-refresh",
			Expiry:       time.Now().Add(time.Hour),
		}
		if err := saveToken(tokenFile, valid); err != nil {
			t.Fatalf("saveToken() error: %v", err)
		}

		tok, err := getToken(testOAuthConfig(), tokenFile)
		if err != nil {
			t.Fatalf("getToken() error: %v", err)
		}
		if tok.AccessToken != valid.AccessToken {
			t.Errorf("AccessToken = %q, want %q", tok.AccessToken, valid.AccessToken)
		}
	})

	t.Run("ExpiredTokenWithRefresh", func(t *testing.T) {
		// An expired token is still usable as long as it can be refreshed;
		// getToken must not kick off device authorization for it.
		tokenFile := filepath.Join(dir, "expired.json")
		expired := &oauth2.Token{
			AccessToken:  "expired-access",
			RefreshToken: "still-good-refresh",
			Expiry:       time.Now().Add(-time.Hour),
		}
		if err := saveToken(tokenFile, expired); err != nil {
			t.Fatalf("saveToken() error: %v", err)
		}

		tok, err := getToken(testOAuthConfig(), tokenFile)
		if err != nil {
			t.Fatalf("getToken() error: %v", err)
		}
		if tok.RefreshToken != expired.RefreshToken {
			t.Errorf("RefreshToken = %q, want %q", tok.RefreshToken, expired.RefreshToken)
		}
	})

	t.Run("NoTokenFile", func(t *testing.T) {
		// No token on disk falls through to device authorization, which the
		// test config cannot perform.
		_, err := getToken(testOAuthConfig(), filepath.Join(dir, "absent.json"))
		if err == nil {
			t.Error("expected device authorization error without a token file")
		}
	})
}

func TestTokenSaverPersistsRefresh(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"refreshed-access","token_type":"Bearer","refresh_token":"rotated-refresh","expires_in":3600}`)
	}))
	defer tokenServer.Close()

	tokenFile := filepath.Join(t.TempDir(), "token.json")
	ts := &tokenSaver{
		config: &oauth2.Config{
			ClientID:     "test-client-id",
			ClientSecret: "test-client-secret",
			Endpoint:     oauth2.Endpoint{TokenURL: tokenServer.URL},
		},
		token: &oauth2.Token{
			AccessToken:  "stale-access",
			RefreshToken: "stale-refresh",
			Expiry:       time.Now().Add(-time.Hour),
		},
		tokenFile: tokenFile,
	}

	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("Token() error: %v", err)
	}
	if tok.AccessToken != "refreshed-access" {
		t.Fatalf("AccessToken = %q, want the refreshed token", tok.AccessToken)
	}

	saved, err := tokenFromFile(tokenFile)
	if err != nil {
		t.Fatalf("refreshed token was not written to disk: %v", err)
	}
	if saved.AccessToken != "refreshed-access" {
		t.Errorf("persisted AccessToken = %q, want the refreshed token", saved.AccessToken)
	}
}

func TestTokenSaverConcurrent(t *testing.T) {
	// A still-valid token never hits the network, so concurrent callers only
	// exercise the saver's own locking.
	ts := &tokenSaver{
		config: testOAuthConfig(),
		token: &oauth2.Token{
			AccessToken:  "current-access",
			RefreshToken: "current-refresh",
			Expiry:       time.Now().Add(time.Hour),
		},
		tokenFile: filepath.Join(t.TempDir(), "token.json"),
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := ts.Token()
			if err != nil {
				t.Errorf("Token() error: %v", err)
				return
			}
			if tok.AccessToken != "current-access" {
				t.Errorf("AccessToken = %q, want the cached token", tok.AccessToken)
			}
		}()
	}
	wg.Wait()
}
