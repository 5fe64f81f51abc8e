package tenants

import "testing"

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		slug    string
		wantErr bool
	}{
		{slug: "acme", wantErr: false},
		{slug: "ACME-2", wantErr: false},
		{slug: "ab", wantErr: false},
		{slug: "a", wantErr: true},
		{slug: "this-slug-is-definitely-longer-than-forty-chars", wantErr: true},
		{slug: "acme_co", wantErr: true},
		{slug: "acme co", wantErr: true},
		{slug: "-acme", wantErr: true},
		{slug: "acme-", wantErr: true},
		{slug: "Admin", wantErr: true},
		{slug: "metrics", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			err := ValidateSlug(tt.slug)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSlug(%q) error = %v, wantErr %v", tt.slug, err, tt.wantErr)
			}
		})
	}
}
