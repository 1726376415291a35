package config

import "testing"

func TestParseSize(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"4096", 4096},
		{"4k", 4 << 10},
		{"4K", 4 << 10},
		{"64m", 64 << 20},
		{"1g", 1 << 30},
	}
	for _, c := range cases {
		got, err := ParseSize(c.in)
		if err != nil {
			t.Errorf("ParseSize(%q) error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseSize(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseSizeInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "4x"} {
		if _, err := ParseSize(in); err == nil {
			t.Errorf("ParseSize(%q) expected error, got nil", in)
		}
	}
}

func validConfig() RunConfig {
	return RunConfig{
		Path:       "/dev/nvme0n1",
		Workload:   RandRead,
		SizeBytes:  65536,
		QueueDepth: 4,
		BlockSize:  4096,
	}
}

func TestValidateRequiresExactlyOneTermination(t *testing.T) {
	cfg := validConfig()
	cfg.Runtime = 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when both size and runtime are set")
	}

	cfg = validConfig()
	cfg.SizeBytes = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when neither size nor runtime is set")
	}
}

func TestValidateDefaultsModeAndSubmit(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Mode != PathDirect {
		t.Errorf("Mode = %q, want %q", cfg.Mode, PathDirect)
	}
	if cfg.Submit != SubmitAndWait {
		t.Errorf("Submit = %q, want %q", cfg.Submit, SubmitAndWait)
	}
}

func TestValidateRejectsBadWorkload(t *testing.T) {
	cfg := validConfig()
	cfg.Workload = "sequential"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported workload")
	}
}

func TestTotalOps(t *testing.T) {
	cfg := validConfig()
	if got := cfg.TotalOps(); got != 16 {
		t.Errorf("TotalOps() = %d, want 16", got)
	}
}

func TestIsByteBudget(t *testing.T) {
	cfg := validConfig()
	if !cfg.IsByteBudget() {
		t.Error("IsByteBudget() = false, want true")
	}
	cfg.SizeBytes = 0
	cfg.Runtime = 1
	if cfg.IsByteBudget() {
		t.Error("IsByteBudget() = true, want false")
	}
}
