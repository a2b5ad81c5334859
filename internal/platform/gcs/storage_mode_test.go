package gcs

import (
	"testing"
)

func TestResolveStorageConfigFromEnv(t *testing.T) {
	cases := []struct {
		name         string
		mode         string
		emulatorHost string

		wantErr     bool
		wantMode    StorageMode
		wantImplied bool
	}{
		{name: "defaults to gcs", wantMode: StorageModeGCS},
		{name: "explicit gcs", mode: "gcs", wantMode: StorageModeGCS},
		{name: "explicit gcs wins over host", mode: "gcs", emulatorHost: "http://fake-gcs:4443", wantMode: StorageModeGCS},
		{name: "explicit emulator", mode: "gcs_emulator", emulatorHost: "http://fake-gcs:4443", wantMode: StorageModeEmulator},
		{name: "emulator implied by host", emulatorHost: "http://fake-gcs:4443", wantMode: StorageModeEmulator, wantImplied: true},
		{name: "mode is case insensitive", mode: "GCS_Emulator", emulatorHost: "http://fake-gcs:4443", wantMode: StorageModeEmulator},
		{name: "unknown mode", mode: "local", wantErr: true},
		{name: "emulator without host", mode: "gcs_emulator", wantErr: true},
		{name: "emulator host without scheme", mode: "gcs_emulator", emulatorHost: "fake-gcs:4443", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("OBJECT_STORAGE_MODE", tc.mode)
			t.Setenv("STORAGE_EMULATOR_HOST", tc.emulatorHost)

			cfg, err := ResolveStorageConfigFromEnv()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("want error, got cfg=%+v", cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if cfg.Mode != tc.wantMode || cfg.ModeImplied != tc.wantImplied {
				t.Fatalf("cfg=%+v want mode=%q implied=%v", cfg, tc.wantMode, tc.wantImplied)
			}
		})
	}
}
