package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

type Config struct {
	CockroachURL      string        `ff:"long: cockroach-url, default: postgresql://root@127.0.0.1:26257/defaultdb?sslmode=disable, usage: URL for the CockroachDB database"`
	Port              uint32        `ff:"long: port, short: p, default: 4000, usage: Port for the HTTP server"`
	NATSURL           string        `ff:"long: nats-url, usage: URL for the NATS server; empty uses in-process pubsub"`
	TokenKey          string        `ff:"long: token-key, default: supersecretkeyyoushouldnotcommit, usage: 32 bytes key used to sign auth tokens"`
	BackgroundTimeout time.Duration `ff:"long: background-timeout, default: 15s, usage: Timeout for background service tasks"`
	ReadReceiptDelay  time.Duration `ff:"long: read-receipt-delay, default: 500ms, usage: Settle delay before marking a thread as read"`
	SendRateLimit     float64       `ff:"long: send-rate-limit, default: 2, usage: Messages per second a user may send; 0 disables the limit"`
	SendBurst         int           `ff:"long: send-burst, default: 10, usage: Burst of messages a user may send at once"`
	DBMaxConns        int           `ff:"long: db-max-conns, default: 20, usage: Maximum open database connections"`
	DBMaxConnIdleTime time.Duration `ff:"long: db-max-conn-idle-time, default: 5m, usage: Maximum idle time of a database connection"`
	ShutdownTimeout   time.Duration `ff:"long: shutdown-timeout, default: 10s, usage: Timeout for the HTTP server graceful shutdown"`
}

func (cfg Config) Validate() error {
	if len(cfg.TokenKey) != 32 {
		return errors.New("token key must be exactly 32 bytes")
	}

	if cfg.SendRateLimit < 0 {
		return errors.New("send rate limit cannot be negative")
	}

	return nil
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	fs := ff.NewFlagSetFrom("foodbridge", &cfg)
	err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("FOODBRIDGE"))
	if errors.Is(err, ff.ErrHelp) {
		fmt.Println(ffhelp.Flags(fs))
		os.Exit(0)
	}

	if err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}
