package settings

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		wantPath string
		wantMsg  string
	}{
		{
			name:  "defaults",
			input: `{"rembg":{"flags":["-a","-m","isnet-general-use"],"inputDirectory":".","outputDirectory":"./output"}}`,
		},
		{
			name:  "partial",
			input: `{"rembg":{"flags":["-x"]}}`,
		},
		{
			name:  "empty object",
			input: `{}`,
		},
		{
			name:    "empty file",
			input:   "  \n",
			wantErr: true,
			wantMsg: "empty",
		},
		{
			name:    "invalid json",
			input:   "not valid json",
			wantErr: true,
			wantMsg: "invalid JSON",
		},
		{
			name:    "top level array",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:     "flags as string",
			input:    `{"rembg":{"flags":"-a -m u2net"}}`,
			wantErr:  true,
			wantPath: "rembg.flags",
		},
		{
			name:     "non-string flag",
			input:    `{"rembg":{"flags":["-a", 3]}}`,
			wantErr:  true,
			wantPath: "rembg.flags[1]",
		},
		{
			name:     "directory as number",
			input:    `{"rembg":{"outputDirectory":42}}`,
			wantErr:  true,
			wantPath: "rembg.outputDirectory",
		},
		{
			name:    "unknown rembg key",
			input:   `{"rembg":{"outputDir":"./out"}}`,
			wantErr: true,
			wantMsg: "outputDir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.input))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Validate: unexpected error %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate: expected error, got nil")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if tt.wantPath != "" && ve.Path != tt.wantPath {
				t.Errorf("Path: got %q, want %q", ve.Path, tt.wantPath)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}
