package cmd

import "testing"

func TestDetectExportFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		format  string
		want    string
		wantErr bool
	}{
		{name: "explicit format wins", path: "report.csv", format: "excel", want: "excel"},
		{name: "csv by extension", path: "report.csv", want: "csv"},
		{name: "excel by extension", path: "report.xlsx", want: "excel"},
		{name: "xlsm maps to excel", path: "report.xlsm", want: "excel"},
		{name: "uppercase extension", path: "REPORT.CSV", want: "csv"},
		{name: "unknown extension fails", path: "report.pdf", wantErr: true},
		{name: "no extension fails", path: "report", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := detectExportFormat(tt.path, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.path)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected format %q, got %q", tt.want, got)
			}
		})
	}
}
