package config

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidateRejectsNonPositiveFPS(t *testing.T) {
	cfg := Default()
	cfg.FPS = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero fps")
	}
}

func TestValidateRejectsEmptyCaptureRect(t *testing.T) {
	cfg := Default()
	cfg.CaptureRect.W = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero-width capture rect")
	}
}

func TestValidateRejectsZeroConverterThreads(t *testing.T) {
	cfg := Default()
	cfg.ConverterThreads = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero converter threads")
	}
}

func TestValidateRejectsNonPositiveBitrate(t *testing.T) {
	cfg := Default()
	cfg.VideoBitrate = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative video bitrate")
	}
}

func TestLoadAppliesDefaultsWhenNoConfigFilePresent(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FPS != Default().FPS {
		t.Fatalf("expected default fps %d, got %d", Default().FPS, cfg.FPS)
	}
	if cfg.ListenAddr != Default().ListenAddr {
		t.Fatalf("expected default listen addr %q, got %q", Default().ListenAddr, cfg.ListenAddr)
	}
}
