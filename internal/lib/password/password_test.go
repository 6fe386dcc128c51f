package password

import (
	"testing"
)

func TestGetHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "regular password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "password with special chars",
			password: "p@ssw0rd!@#$%^&*()",
			wantErr:  false,
		},
		{
			name:     "short password",
			password: "123",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotHash, err := GetHash(tt.password)

			if (err != nil) != tt.wantErr {
				t.Errorf("GetHash() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if gotHash == tt.password {
				t.Error("GetHash() returned the plaintext password")
			}
		})
	}
}

func TestCompareHash(t *testing.T) {
	hash, err := GetHash("correct-password")
	if err != nil {
		t.Fatalf("GetHash() error = %v", err)
	}

	if err := CompareHash(hash, "correct-password"); err != nil {
		t.Errorf("CompareHash() with matching password returned error: %v", err)
	}

	if err := CompareHash(hash, "wrong-password"); err == nil {
		t.Error("CompareHash() with wrong password returned nil error")
	}
}
