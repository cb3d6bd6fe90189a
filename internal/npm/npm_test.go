// SPDX-License-Identifier: MPL-2.0

package npm

import (
	"errors"
	"testing"

	"runx-cli/pkg/types"
)

func TestLocate_Override(t *testing.T) {
	t.Parallel()

	got, err := Locate("/opt/npm/bin/npm")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/opt/npm/bin/npm" {
		t.Errorf("Locate() = %q, want the override", got)
	}
}

func TestLocate_Missing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := Locate("")
	if !errors.Is(err, ErrNpmNotFound) {
		t.Fatalf("err = %v, want ErrNpmNotFound", err)
	}
}

func TestParseInstallReport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		out         string
		wantNil     bool
		wantAdded   int
		wantUpdated int
	}{
		{
			name:      "numeric counts",
			out:       `{"added": 3, "updated": 1}`,
			wantAdded: 3, wantUpdated: 1,
		},
		{
			name:      "array counts",
			out:       `{"added": [{"name": "a"}, {"name": "b"}], "updated": []}`,
			wantAdded: 2, wantUpdated: 0,
		},
		{
			name: "absent fields",
			out:  `{}`,
		},
		{
			name:    "not json",
			out:     "npm WARN something\n",
			wantNil: true,
		},
		{
			name:    "empty output",
			out:     "",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			report := parseInstallReport([]byte(tt.out))
			if tt.wantNil {
				if report != nil {
					t.Fatalf("report = %+v, want nil", report)
				}
				return
			}
			if report == nil {
				t.Fatal("report is nil")
			}
			if report.Added != tt.wantAdded {
				t.Errorf("Added = %d, want %d", report.Added, tt.wantAdded)
			}
			if report.Updated != tt.wantUpdated {
				t.Errorf("Updated = %d, want %d", report.Updated, tt.wantUpdated)
			}
		})
	}
}

func TestInstallError_Message(t *testing.T) {
	t.Parallel()

	err := &InstallError{
		Specs: []types.PackageSpec{"cowsay", "left-pad@1.3.0"},
		Code:  types.ExitCode(243),
	}
	want := "installing cowsay, left-pad@1.3.0 failed with exit code 243"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestInvoker_WithUserConfig(t *testing.T) {
	t.Parallel()

	plain := NewInvoker("/usr/bin/npm", "", nil)
	if got := plain.withUserConfig([]string{"install"}); len(got) != 1 {
		t.Errorf("withUserConfig() = %v, want no extra args", got)
	}

	custom := NewInvoker("/usr/bin/npm", "/home/me/.npmrc", nil)
	got := custom.withUserConfig([]string{"install"})
	if len(got) != 3 || got[1] != "--userconfig" || got[2] != "/home/me/.npmrc" {
		t.Errorf("withUserConfig() = %v, want a trailing --userconfig pair", got)
	}
}
