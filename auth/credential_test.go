package auth

import (
	"testing"
	"time"
)

func TestCredential_OwnerID(t *testing.T) {
	var nilCred *Credential
	if got := nilCred.OwnerID(); got != "" {
		t.Errorf("nil OwnerID = %q, want empty", got)
	}
	cred := &Credential{UserID: "user-1"}
	if got := cred.OwnerID(); got != "user-1" {
		t.Errorf("OwnerID = %q, want user-1", got)
	}
}

func TestCredential_IsExpired(t *testing.T) {
	tests := []struct {
		name string
		cred *Credential
		want bool
	}{
		{"nil credential", nil, true},
		{"zero expiry never expires", &Credential{}, false},
		{"future expiry", &Credential{Expires: time.Now().Add(time.Hour)}, false},
		{"past expiry", &Credential{Expires: time.Now().Add(-time.Hour)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cred.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCredential_HasPermission(t *testing.T) {
	cred := &Credential{Permissions: []string{"email", "public_profile"}}

	if !cred.HasPermission("email") {
		t.Error("HasPermission(email) = false, want true")
	}
	if cred.HasPermission("user_friends") {
		t.Error("HasPermission(user_friends) = true, want false")
	}

	var nilCred *Credential
	if nilCred.HasPermission("email") {
		t.Error("nil HasPermission = true, want false")
	}
}
