package address

import "fmt"

// Mode selects how the encrypted slice of a new CA is produced.
type Mode int

const (
	// ModeCipher encrypts plain bits 46..32 under the pointer key. The
	// resulting CA decodes back to its base without any side table.
	ModeCipher Mode = iota

	// ModeRandom draws a fresh 24-bit slice that no live CA uses. The
	// Encoder remembers which plain bits each slice stands for.
	ModeRandom
)

func (m Mode) String() string {
	switch m {
	case ModeCipher:
		return "cipher"
	case ModeRandom:
		return "random"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps "cipher" and "random" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "cipher":
		return ModeCipher, nil
	case "random":
		return ModeRandom, nil
	default:
		return 0, fmt.Errorf("address: unknown mode %q", s)
	}
}
