// Package address encodes plain addresses into capability addresses (CAs)
// and back.
//
// # Layout
//
//	 63  62..57  56..48      47      46..32       31..0
//	[S] [power] [slice hi9] [S'] [slice lo15] [plain low]
//
// The power is the size class of the allocation the CA was minted for. The
// 24-bit slice is either the encryption of plain bits 46..32 under the pointer
// key and a tweak derived from (power, plain bits 31..power), or a random
// value remembered by the Encoder (ModeRandom). The low 32 bits are the plain
// low word, so interior pointers are formed with ordinary addition.
//
// # Usage
//
//	enc := address.NewEncoder(codec.NewXOR(pointerKey))
//	ca, err := enc.Encode(base, 12888)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(ca.Power()) // 14 when base is 16 KiB aligned
//	plain := enc.Resolve(ca) // == base
//
// # Thread Safety
//
// Encoder instances are not thread-safe. Callers must synchronize access
// externally; c3.Model does so with its space mutex.
package address
