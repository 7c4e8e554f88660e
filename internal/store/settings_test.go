package store

import (
	"errors"
	"testing"
)

func TestSettingsRepository_GetSet(t *testing.T) {
	repo := newTestStore(t).Settings()

	if _, err := repo.Get(SettingMissingData); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() on unset key error = %v, want ErrNotFound", err)
	}

	if err := repo.Set(SettingMissingData, "skip"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Set(SettingMissingData, "reset"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	got, err := repo.Get(SettingMissingData)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "reset" {
		t.Errorf("Get() = %q, want %q", got, "reset")
	}
}

func TestSettingsRepository_Bool(t *testing.T) {
	repo := newTestStore(t).Settings()

	got, err := repo.GetBool(SettingRequireTipTouch, true)
	if err != nil {
		t.Fatalf("GetBool() error = %v", err)
	}
	if !got {
		t.Error("GetBool() on unset key should return the default")
	}

	if err := repo.SetBool(SettingRequireTipTouch, false); err != nil {
		t.Fatalf("SetBool() error = %v", err)
	}
	got, err = repo.GetBool(SettingRequireTipTouch, true)
	if err != nil {
		t.Fatalf("GetBool() error = %v", err)
	}
	if got {
		t.Error("GetBool() = true, want stored false")
	}

	if err := repo.Set(SettingRequireTipTouch, "sometimes"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := repo.GetBool(SettingRequireTipTouch, false); err == nil {
		t.Error("GetBool() should fail on a non-boolean value")
	}
}
