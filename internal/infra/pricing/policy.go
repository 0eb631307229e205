package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	domainpricing "staybook/internal/domain/pricing"
)

// PolicyFile mirrors the TOML document:
//
//	service_charge_percent = 8.0
//	min_discount_percent   = 0.0
//	max_discount_percent   = 100.0
//	weekly_min_nights      = 7
//	monthly_min_nights     = 30
//	default_lead_time      = "24h"
type PolicyFile struct {
	ServiceChargePercent *float64 `toml:"service_charge_percent"`
	MinDiscountPercent   *float64 `toml:"min_discount_percent"`
	MaxDiscountPercent   *float64 `toml:"max_discount_percent"`
	WeeklyMinNights      *int     `toml:"weekly_min_nights"`
	MonthlyMinNights     *int     `toml:"monthly_min_nights"`
	DefaultLeadTime      string   `toml:"default_lead_time"`
}

type PolicyConfig struct {
	Pricing         domainpricing.Policy
	DefaultLeadTime time.Duration
}

func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{Pricing: domainpricing.DefaultPolicy()}
}

// ParsePolicy decodes a TOML document; omitted keys keep their defaults.
func ParsePolicy(raw string) (PolicyConfig, error) {
	cfg := DefaultPolicyConfig()
	var file PolicyFile
	md, err := toml.Decode(raw, &file)
	if err != nil {
		return PolicyConfig{}, fmt.Errorf("pricing policy: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return PolicyConfig{}, fmt.Errorf("pricing policy: unknown keys %s", strings.Join(keys, ", "))
	}

	p := &cfg.Pricing
	if file.ServiceChargePercent != nil {
		p.ServiceChargePercent = *file.ServiceChargePercent
	}
	if file.MinDiscountPercent != nil {
		p.MinDiscountPercent = *file.MinDiscountPercent
	}
	if file.MaxDiscountPercent != nil {
		p.MaxDiscountPercent = *file.MaxDiscountPercent
	}
	if file.WeeklyMinNights != nil {
		p.WeeklyMinNights = *file.WeeklyMinNights
	}
	if file.MonthlyMinNights != nil {
		p.MonthlyMinNights = *file.MonthlyMinNights
	}
	if err := p.Validate(); err != nil {
		return PolicyConfig{}, err
	}
	if lead := strings.TrimSpace(file.DefaultLeadTime); lead != "" {
		d, err := time.ParseDuration(lead)
		if err != nil || d < 0 {
			return PolicyConfig{}, fmt.Errorf("pricing policy: invalid default_lead_time %q", file.DefaultLeadTime)
		}
		cfg.DefaultLeadTime = d
	}
	return cfg, nil
}

// LoadPolicyFile reads the policy from path. An empty path or a broken file
// yields the platform defaults and a warning.
func LoadPolicyFile(path string, logger *slog.Logger) PolicyConfig {
	if strings.TrimSpace(path) == "" {
		return DefaultPolicyConfig()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if logger != nil {
			level := slog.LevelWarn
			if errors.Is(err, os.ErrNotExist) {
				level = slog.LevelInfo
			}
			logger.Log(context.Background(), level, "pricing policy file unavailable, using defaults", "path", path, "error", err)
		}
		return DefaultPolicyConfig()
	}
	cfg, err := ParsePolicy(string(raw))
	if err != nil {
		if logger != nil {
			logger.Warn("invalid pricing policy file, using defaults", "path", path, "error", err)
		}
		return DefaultPolicyConfig()
	}
	return cfg
}
