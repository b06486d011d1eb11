// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/staking/epoch"
)

// Config is the optional YAML file passed with --config. Flags that are set
// explicitly take precedence over it.
type Config struct {
	DataDir     string       `yaml:"dataDir"`
	APIAddr     string       `yaml:"apiAddr"`
	APICors     string       `yaml:"apiCors"`
	MetricsAddr string       `yaml:"metricsAddr"`
	AdminAddr   string       `yaml:"adminAddr"`
	Policy      epoch.Policy `yaml:"policy"`
}

func defaultConfig() *Config {
	return &Config{
		DataDir:     dataDirFlag.Value,
		APIAddr:     apiAddrFlag.Value,
		APICors:     apiCorsFlag.Value,
		MetricsAddr: metricsAddrFlag.Value,
		AdminAddr:   adminAddrFlag.Value,
		Policy:      epoch.DefaultPolicy(),
	}
}

// parseConfig overlays data onto the defaults. Unknown keys are rejected.
func parseConfig(data []byte) (*Config, error) {
	cfg := defaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	p := c.Policy
	if p.MaxJackpot.IsZero() {
		return errors.New("policy: maxJackpot must be positive")
	}
	if p.MinPremium.Cmp(p.MaxPremium) > 0 {
		return errors.Errorf("policy: minPremium %v above maxPremium %v", p.MinPremium, p.MaxPremium)
	}
	if p.MaxProbability.IsZero() || p.MaxProbability.Cmp(fixedpoint.One[fixedpoint.D18]()) > 0 {
		return errors.Errorf("policy: maxProbability %v out of (0, 1]", p.MaxProbability)
	}
	if p.MaxTreasury.Cmp(fixedpoint.One[fixedpoint.D3]()) > 0 {
		return errors.Errorf("policy: maxTreasuryRatio %v above 1", p.MaxTreasury)
	}
	return nil
}

func loadConfig(ctx *cli.Context) (*Config, error) {
	cfg := defaultConfig()
	if path := ctx.String(configFlag.Name); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		if cfg, err = parseConfig(data); err != nil {
			return nil, errors.WithMessagef(err, "config %v", path)
		}
	}

	override := func(flag cli.StringFlag, field *string) {
		if ctx.IsSet(flag.Name) {
			*field = ctx.String(flag.Name)
		}
	}
	override(dataDirFlag, &cfg.DataDir)
	override(apiAddrFlag, &cfg.APIAddr)
	override(apiCorsFlag, &cfg.APICors)
	override(metricsAddrFlag, &cfg.MetricsAddr)
	override(adminAddrFlag, &cfg.AdminAddr)

	if cfg.DataDir == "" {
		return nil, errors.Errorf("unable to infer default data dir, use -%s to specify one", dataDirFlag.Name)
	}
	return cfg, nil
}
