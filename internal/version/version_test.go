package version

import "testing"

func withBuildInfo(t *testing.T, v, c, d string) {
	t.Helper()
	prevV, prevC, prevD := version, commit, date
	version, commit, date = v, c, d
	t.Cleanup(func() { version, commit, date = prevV, prevC, prevD })
}

func TestDefaults(t *testing.T) {
	if version != "dev" || commit != "unknown" || date != "unknown" {
		t.Fatalf("unexpected defaults without ldflags: %q %q %q", version, commit, date)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name  string
		build [3]string
		want  string
	}{
		{
			name:  "dev build",
			build: [3]string{"dev", "unknown", "unknown"},
			want:  "tablebook version=dev commit=unknown date=unknown",
		},
		{
			name:  "release build",
			build: [3]string{"v1.2.0", "3f2a9c1", "2026-10-17"},
			want:  "tablebook version=v1.2.0 commit=3f2a9c1 date=2026-10-17",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, tt.build[0], tt.build[1], tt.build[2])
			if got := String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
			if got := GetVersion(); got != tt.build[0] {
				t.Fatalf("GetVersion() = %q, want %q", got, tt.build[0])
			}
		})
	}
}
