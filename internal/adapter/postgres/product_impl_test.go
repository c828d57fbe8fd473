package postgres

import (
	"testing"

	"github.com/user/classifier-service/internal/entity"
)

func TestBuildProductUpdate(t *testing.T) {
	yes, no := true, false
	full := "https://cdn/mobile/full/P1.jpg"

	tests := []struct {
		name      string
		patch     entity.ProductPatch
		wantQuery string
		wantArgs  int
	}{
		{
			name:      "empty patch",
			patch:     entity.ProductPatch{},
			wantQuery: "",
		},
		{
			name:      "classified and unavailable",
			patch:     entity.ProductPatch{IsClassified: &yes, IsAvailable: &no},
			wantQuery: "UPDATE products SET is_classified = $1, is_available = $2, updated_at = NOW() WHERE id = $3;",
			wantArgs:  3,
		},
		{
			name:      "mobile full only",
			patch:     entity.ProductPatch{MainImageMobileFull: &full},
			wantQuery: "UPDATE products SET main_image_mobile_full = $1, updated_at = NOW() WHERE id = $2;",
			wantArgs:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildProductUpdate("P1", tt.patch)
			if query != tt.wantQuery {
				t.Errorf("query = %q, want %q", query, tt.wantQuery)
			}
			if len(args) != tt.wantArgs {
				t.Fatalf("len(args) = %d, want %d", len(args), tt.wantArgs)
			}
			if tt.wantArgs > 0 && args[len(args)-1] != "P1" {
				t.Errorf("last arg = %v, want product id", args[len(args)-1])
			}
		})
	}
}
