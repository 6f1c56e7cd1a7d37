package c3

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/c3kit/c3/address"
	"github.com/joshuapare/c3kit/c3/alloc"
	"github.com/joshuapare/c3kit/c3/codec"
	"github.com/joshuapare/c3kit/c3/keys"
	"github.com/joshuapare/c3kit/internal/format"
)

const (
	// DefaultMaxTrackedBytes bounds the number of monitor records.
	DefaultMaxTrackedBytes = 1 << 20

	CipherXOR     = codec.NameXOR
	CipherFeistel = codec.NameFeistel
)

// Config configures a Model.
type Config struct {
	// Mode is "cipher" (deterministic slices) or "random".
	Mode string `yaml:"mode" validate:"omitempty,oneof=cipher random"`

	// Cipher is the slice cipher: "xor" or "feistel".
	Cipher string `yaml:"cipher" validate:"omitempty,oneof=xor feistel"`

	// PointerKey and DataKey are 24-bit keys. Zero draws a random key.
	PointerKey uint32 `yaml:"pointer_key" validate:"lte=16777215"`
	DataKey    uint32 `yaml:"data_key" validate:"lte=16777215"`

	// AddressLow and AddressHigh bound the allocator window [low, high).
	AddressLow  uint64 `yaml:"address_low"`
	AddressHigh uint64 `yaml:"address_high" validate:"gtfield=AddressLow"`

	// Allocator is "firstfit" or "bump".
	Allocator string `yaml:"allocator" validate:"omitempty,oneof=firstfit bump"`

	// MaxTrackedBytes caps monitor records. Zero means unbounded.
	MaxTrackedBytes int `yaml:"max_tracked_bytes" validate:"gte=0"`

	// MaxSliceRetries bounds random slice draws per allocation.
	MaxSliceRetries int `yaml:"max_slice_retries" validate:"gte=0,lte=65536"`

	// StrictFree makes reads through freed records violations.
	StrictFree bool `yaml:"strict_free"`

	// SecureKeys holds keys in locked memory when the mlock limit allows.
	SecureKeys bool `yaml:"secure_keys"`

	// Seed makes random-mode slices reproducible. Nil seeds from crypto/rand.
	Seed *uint64 `yaml:"seed"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Mode:            address.ModeCipher.String(),
		Cipher:          CipherXOR,
		AddressLow:      format.DefaultAddressSpaceLow,
		AddressHigh:     format.DefaultAddressSpaceHigh,
		Allocator:       string(alloc.KindFirstFit),
		MaxTrackedBytes: DefaultMaxTrackedBytes,
		MaxSliceRetries: address.DefaultMaxRetries,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and cross-field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("c3: config: field %s fails %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("c3: config: %w", err)
	}
	if c.AddressHigh > format.DefaultAddressSpaceHigh {
		return fmt.Errorf("c3: config: address_high %#x above %#x", c.AddressHigh, uint64(format.DefaultAddressSpaceHigh))
	}
	return nil
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("c3: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("c3: parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) mode() address.Mode {
	m, err := address.ParseMode(c.Mode)
	if err != nil {
		return address.ModeCipher
	}
	return m
}

// NewEncoder returns an encoder for pk set up the way a Model's domains are.
// seedOffset is added to Seed so domains sharing a config draw different
// random slices. extra options apply last.
func (c Config) NewEncoder(pk keys.PointerKey, seedOffset uint64, extra ...address.Option) (*address.Encoder, error) {
	ciph, err := codec.New(c.Cipher, uint32(pk))
	if err != nil {
		return nil, fmt.Errorf("c3: %w", err)
	}
	opts := []address.Option{
		address.WithMode(c.mode()),
		address.WithMaxRetries(c.MaxSliceRetries),
	}
	if c.Seed != nil {
		opts = append(opts, address.WithSeed(*c.Seed+seedOffset))
	}
	opts = append(opts, extra...)
	return address.NewEncoder(ciph, opts...), nil
}

// keyPair returns the configured keys, drawing random ones for zero fields.
func (c Config) keyPair() (keys.Pair, error) {
	p := keys.Pair{Pointer: keys.PointerKey(c.PointerKey), Data: keys.DataKey(c.DataKey)}
	if p.Pointer != 0 && p.Data != 0 {
		return p, nil
	}
	g, err := keys.Generate()
	if err != nil {
		return keys.Pair{}, err
	}
	if p.Pointer == 0 {
		p.Pointer = g.Pointer
	}
	if p.Data == 0 {
		p.Data = g.Data
	}
	return p, nil
}
