package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"signingKeys": map[string]any{
			"private": "",
		},
		"googleOAuth": map[string]any{
			"clientId": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "SIGNINGKEYS_PRIVATE", want: "signingKeys.private"},
		{envKey: "GOOGLEOAUTH_CLIENTID", want: "googleOAuth.clientId"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestConfigValidate_RequiresSigningKeys(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if err := cfg.validate(); err == nil {
		t.Fatal("expected validation error for empty config")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Auth.AccessTokenTTL != defaultAccessTokenTTL {
		t.Fatalf("access token TTL default = %v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshTokenTTL != defaultRefreshTokenTTL {
		t.Fatalf("refresh token TTL default = %v", cfg.Auth.RefreshTokenTTL)
	}
	if cfg.Jobs.SweepInterval != defaultSweepInterval {
		t.Fatalf("sweep interval default = %v", cfg.Jobs.SweepInterval)
	}
}
