package main

import (
	"fmt"
	"time"
)

type Config struct {
	SecretKey       string        `env:"SECRET_KEY,required=true"`
	TokenTTL        time.Duration `env:"TOKEN_TTL,default=24h"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	IndexFilepath   string        `env:"INDEX_FILEPATH,required=true"`
	MediaRoot       string        `env:"MEDIA_ROOT,required=true"`
	BannedWords     string        `env:"BANNED_WORDS"`
	CharReplacement string        `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	Host            string        `env:"HOST,default=localhost"`
	Port            int           `env:"PORT,default=8080"`
}

func (c Config) CharacterRune() (rune, error) {
	r := []rune(c.CharReplacement)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q",
			c.CharReplacement,
		)
	}
	return r[0], nil
}
