package config

import (
	"errors"
	"flag"
	"io/fs"
	"os"

	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/omeid/uconfig/flat"
)

const (
	TagEnv  = "env"
	TagFlag = "flag"
	TagDesc = "desc"

	DefaultEnvFile = ".env"
)

var (
	ErrEnvLoad          = errors.New("cannot load env file")
	ErrFlagParse        = errors.New("cannot parse flag")
	ErrConfigInvalid    = errors.New("invalid config struct")
	ErrConfigValidation = errors.New("config validation error")
)

type defaulter interface {
	SetDefaults()
}

// LoadConfig fills cfg from the env file, the environment and the command line flags, in order of
// increasing priority. Defaults are applied before validation
func LoadConfig(cfg interface{}, osArgs *[]string, envFile string) error {
	if envFile != "" {
		// variables already present in the environment are not overwritten
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return lib.WrapError(ErrEnvLoad, err)
		}
	}

	// recursively iterates over each field of the nested struct
	fields, err := flat.View(cfg)
	if err != nil {
		return lib.WrapError(ErrConfigInvalid, err)
	}

	flagset := flag.NewFlagSet("", flag.ContinueOnError)

	for _, field := range fields {
		envName, ok := field.Tag(TagEnv)
		if !ok {
			continue
		}

		envValue, ok := os.LookupEnv(envName)
		if ok {
			_ = field.Set(envValue)
		}

		flagName, ok := field.Tag(TagFlag)
		if !ok {
			continue
		}

		flagDesc, _ := field.Tag(TagDesc)

		// writes flag value to variable
		flagset.Var(field, flagName, flagDesc)
	}

	var args []string
	if osArgs != nil {
		args = *osArgs
	} else {
		args = os.Args
	}

	// flags override .env variables
	err = flagset.Parse(args[1:])
	if err != nil {
		return lib.WrapError(ErrFlagParse, err)
	}

	if d, ok := cfg.(defaulter); ok {
		d.SetDefaults()
	}

	err = validator.New().Struct(cfg)
	if err != nil {
		return lib.WrapError(ErrConfigValidation, err)
	}

	return nil
}
