package validator

import "testing"

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		want    string
		wantErr bool
	}{
		{name: "Plain", email: "owner@acme.com", want: "owner@acme.com"},
		{name: "Mixed Case", email: " Owner@Acme.COM ", want: "owner@acme.com"},
		{name: "Missing At", email: "owner.acme.com", wantErr: true},
		{name: "No TLD", email: "owner@localhost", wantErr: true},
		{name: "Display Name", email: "Owner <owner@acme.com>", wantErr: true},
		{name: "Empty", email: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeEmail() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeEmail() = %q, want %q", got, tt.want)
			}
		})
	}
}
