package main

import "time"

type Config struct {
	Host           string        `env:"HOST,default=0.0.0.0"`
	Port           int           `env:"PORT,default=5000"`
	LogLevel       string        `env:"LOG_LEVEL,default=info"`
	JWTSecret      string        `env:"JWT_SECRET,required=true"`
	TokenTTL       time.Duration `env:"TOKEN_TTL,default=24h"`
	BadgerFilepath string        `env:"BADGER_FILEPATH,default=data/users"`
	UTCOffsetHours int           `env:"UTC_OFFSET_HOURS,default=1"`
	StrictDecode   bool          `env:"STRICT_DECODE,default=true"`
	SendBufferSize int           `env:"SEND_BUFFER_SIZE,default=256"`
	TLSCertFile    string        `env:"TLS_CERT_FILE"`
	TLSKeyFile     string        `env:"TLS_KEY_FILE"`
}
